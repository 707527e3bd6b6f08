// Package resolver turns raw wall attachments into archivable media
// references and raw posts into normalized posts.
package resolver

import (
	"context"
	stderrors "errors"
	"fmt"

	"vkarchive/pkg/errors"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/models"
	"vkarchive/pkg/vk"
)

var (
	// ErrUnresolved means the attachment is of a known kind but carries no
	// usable media reference
	ErrUnresolved = stderrors.New("attachment unresolved")

	// ErrUnknownKind means the attachment kind is not archived
	ErrUnknownKind = stderrors.New("unknown attachment kind")
)

// VideoLookup fetches video metadata by "owner_id[_access_key]" key
type VideoLookup interface {
	VideoGet(ctx context.Context, videoKey string) ([]vk.Video, error)
}

// Resolver dispatches on the attachment kind
type Resolver struct {
	videos VideoLookup
	logger logger.Logger
}

// New creates a resolver. videos is only consulted for video attachments.
func New(videos VideoLookup, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Resolver{videos: videos, logger: log.WithField("component", "resolver")}
}

// IsSoft reports whether err only drops the attachment
func IsSoft(err error) bool {
	return stderrors.Is(err, ErrUnresolved) || stderrors.Is(err, ErrUnknownKind)
}

// Resolve converts one raw attachment. ErrUnresolved and ErrUnknownKind are
// soft failures; any other error comes from the video lookup and is fatal.
func (r *Resolver) Resolve(ctx context.Context, att vk.Attachment) (models.Attachment, error) {
	switch att.Type {
	case vk.AttachmentPhoto:
		if att.Photo == nil {
			break
		}
		return r.resolvePhoto(att.Photo)
	case vk.AttachmentAudio:
		if att.Audio == nil {
			break
		}
		return models.Audio{OwnerID: att.Audio.OwnerID, AudioID: att.Audio.ID}, nil
	case vk.AttachmentVideo:
		if att.Video == nil {
			break
		}
		return r.resolveVideo(ctx, att.Video)
	}

	r.logger.DebugWithFields("Skipping attachment", map[string]interface{}{
		"type": att.Type,
	})
	return nil, ErrUnknownKind
}

// resolvePhoto picks the size with the greatest height; the first of equal
// heights wins
func (r *Resolver) resolvePhoto(photo *vk.Photo) (models.Attachment, error) {
	if len(photo.Sizes) == 0 {
		r.logger.WarnWithFields("Photo has no sizes", map[string]interface{}{
			"owner_id": photo.OwnerID,
			"photo_id": photo.ID,
		})
		return nil, ErrUnresolved
	}

	best := photo.Sizes[0]
	for _, size := range photo.Sizes[1:] {
		if size.Height > best.Height {
			best = size
		}
	}
	return models.Photo{URL: best.URL}, nil
}

func (r *Resolver) resolveVideo(ctx context.Context, video *vk.Video) (models.Attachment, error) {
	key := vk.VideoKey(video.OwnerID, video.ID, video.AccessKey)
	fields := map[string]interface{}{"video": key}

	items, err := r.videos.VideoGet(ctx, key)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeAccessDenied) || errors.IsType(err, errors.ErrorTypeNotFound) {
			r.logger.WithError(err).WarnWithFields("Video is not accessible", fields)
			return nil, ErrUnresolved
		}
		return nil, fmt.Errorf("failed to look up video %s: %w", key, err)
	}

	if len(items) == 0 || items[0].Player == "" {
		r.logger.WarnWithFields("Video lookup returned nothing", fields)
		return nil, ErrUnresolved
	}
	return models.Video{URL: items[0].Player}, nil
}
