package resolver

import (
	"context"

	"vkarchive/pkg/models"
	"vkarchive/pkg/vk"
)

// Normalizer converts raw posts using a Resolver
type Normalizer struct {
	resolver *Resolver
}

func NewNormalizer(r *Resolver) *Normalizer {
	return &Normalizer{resolver: r}
}

// Normalize resolves every attachment of post in order. Soft failures drop
// the attachment; the post itself is always kept unless a lookup fails
// fatally. A post without attachments gets an empty, non-nil list.
func (n *Normalizer) Normalize(ctx context.Context, post vk.Post) (models.Post, error) {
	out := models.Post{
		ID:          post.ID,
		Text:        post.Text,
		Attachments: make([]models.Attachment, 0, len(post.Attachments)),
	}

	for _, raw := range post.Attachments {
		att, err := n.resolver.Resolve(ctx, raw)
		if err != nil {
			if IsSoft(err) {
				continue
			}
			return models.Post{}, err
		}
		out.Attachments = append(out.Attachments, att)
	}

	return out, nil
}
