package auth

import (
	"fmt"
	"io"
	"net/url"
	"strings"
)

// standaloneAppID is the public id of the VK Admin application, which
// accepts the implicit flow for desktop clients
const standaloneAppID = "6121396"

// TokenURL returns the implicit-flow authorization URL. The token is
// returned in the fragment of the redirect.
func TokenURL() string {
	params := url.Values{
		"client_id":     {standaloneAppID},
		"scope":         {"wall,video,audio,pages,groups,offline"},
		"redirect_uri":  {"https://oauth.vk.com/blank.html"},
		"display":       {"page"},
		"response_type": {"token"},
		"revoke":        {"1"},
	}
	return "https://oauth.vk.com/authorize?" + params.Encode()
}

// ShowTokenGuide explains how to obtain an access token
func ShowTokenGuide(w io.Writer) {
	line := strings.Repeat("=", 72)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "OBTAINING A VK ACCESS TOKEN")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "1. Open this URL in a browser where you are logged in to VK:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "   %s\n", TokenURL())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "2. Allow access. The browser lands on a blank page.")
	fmt.Fprintln(w, "3. Copy the access_token value from the address bar, up to the next &.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Audio lookups need a token issued to an application with audio access.")
	fmt.Fprintln(w, "Pass it as the audio token; otherwise the access token is used.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The token grants full access to the account. Do not share it.")
	fmt.Fprintln(w, line)
}
