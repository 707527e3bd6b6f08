package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

const notifyTitle = "vkarchive"

// SendFunc delivers one desktop notification
type SendFunc func(title, message string) error

// Notifier announces the end of a run on the terminal and the desktop
type Notifier struct {
	send SendFunc
}

// NewNotifier uses the notification tool of the current platform. Where
// none is known only the terminal line is printed.
func NewNotifier() *Notifier {
	return &Notifier{send: func(title, message string) error {
		cmd := desktopCommand(runtime.GOOS, title, message)
		if cmd == nil {
			return nil
		}
		return cmd.Run()
	}}
}

// NewNotifierWithSender creates a Notifier delivering through send
func NewNotifierWithSender(send SendFunc) *Notifier {
	return &Notifier{send: send}
}

// desktopCommand returns the command showing a notification on goos
func desktopCommand(goos, title, message string) *exec.Cmd {
	switch goos {
	case "linux", "freebsd", "openbsd":
		return exec.Command("notify-send", "--app-name", notifyTitle, title, message)
	case "darwin":
		return exec.Command("osascript", "-e", fmt.Sprintf("display notification %q with title %q", message, title))
	case "windows":
		script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms
$n = New-Object System.Windows.Forms.NotifyIcon
$n.Icon = [System.Drawing.SystemIcons]::Information
$n.Visible = $true
$n.ShowBalloonTip(5000, %q, %q, 'Info')
Start-Sleep -Seconds 5
$n.Dispose()`, title, message)
		return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	default:
		return nil
	}
}

// RunFinished announces a completed harvest
func (n *Notifier) RunFinished(page string, handled, failed int) {
	message := fmt.Sprintf("Harvested %d posts from %s", handled, page)
	if failed > 0 {
		message += fmt.Sprintf(", %d media failed", failed)
	}
	printf(false, "\n%s\n", Green(message))
	n.deliver(message)
}

// RunFailed announces an aborted harvest
func (n *Notifier) RunFailed(page string, err error) {
	message := fmt.Sprintf("Harvest of %s failed: %v", page, err)
	printf(true, "\n%s\n", Red(message))
	n.deliver(message)
}

// deliver ignores delivery failures
func (n *Notifier) deliver(message string) {
	if n.send != nil {
		_ = n.send(notifyTitle, message)
	}
}
