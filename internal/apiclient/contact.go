// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"net/url"

	"github.com/lensfolio/lensfolio/internal/model"
)

// SubmitContact sends a contact form submission.
// POST /contact
func (c *Client) SubmitContact(ctx context.Context, sub model.ContactSubmission) error {
	return c.post(ctx, "/contact", sub, nil)
}

// ContactMessages lists submitted messages. Admin only.
// GET /contact/messages
func (c *Client) ContactMessages(ctx context.Context) ([]model.ContactMessage, error) {
	var out []model.ContactMessage
	if err := c.get(ctx, "/contact/messages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkMessageRead marks a message as read. Admin only.
// PUT /contact/messages/{id}/read
func (c *Client) MarkMessageRead(ctx context.Context, id string) error {
	return c.put(ctx, "/contact/messages/"+url.PathEscape(id)+"/read", nil, nil)
}

// MarkMessageUnread marks a message as unread. Admin only.
// PUT /contact/messages/{id}/unread
func (c *Client) MarkMessageUnread(ctx context.Context, id string) error {
	return c.put(ctx, "/contact/messages/"+url.PathEscape(id)+"/unread", nil, nil)
}

// DeleteMessage removes a message. Admin only.
// DELETE /contact/messages/{id}
func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	return c.del(ctx, "/contact/messages/"+url.PathEscape(id))
}
