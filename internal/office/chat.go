package office

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Chat manages messages between lawyers.
type Chat struct{ *service }

// Send stores a message from the actor to receiverID, or to everyone
// when receiverID is empty.
func (ch *Chat) Send(ctx context.Context, a audit.Actor, receiverID, text string) (types.ChatMessage, error) {
	if a.ID == "" {
		return types.ChatMessage{}, missing("sender_id")
	}
	if strings.TrimSpace(text) == "" {
		return types.ChatMessage{}, missing("message")
	}
	m := types.ChatMessage{
		SenderID:    a.ID,
		ReceiverID:  receiverID,
		Message:     text,
		MessageType: types.MessageText,
		CreatedAt:   ch.stamp(),
	}
	res := ch.store.Push(ctx, types.ChatMessages, m)
	if err := check("sending message", res); err != nil {
		return types.ChatMessage{}, err
	}
	m.ID = res.Key

	target := "Genel"
	if receiverID != "" {
		target = ch.lawyerName(ctx, receiverID)
	}
	ch.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionCreate,
		Target:     audit.EntityMessage,
		TargetID:   m.ID,
		TargetName: target,
	})
	return m, nil
}

// Conversation returns the messages between lawyers a and b oldest first.
// An empty b selects the messages sent to everyone.
func (ch *Chat) Conversation(ctx context.Context, a, b string) []types.ChatMessage {
	var out []types.ChatMessage
	for _, m := range store.AllAs[types.ChatMessage](ctx, ch.store, types.ChatMessages) {
		switch {
		case b == "" && m.ReceiverID == "":
		case b != "" && m.SenderID == a && m.ReceiverID == b:
		case b != "" && m.SenderID == b && m.ReceiverID == a:
		default:
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out
}

// Unread counts the messages addressed to reader that are not read.
func (ch *Chat) Unread(ctx context.Context, reader string) int {
	n := 0
	for _, m := range store.AllAs[types.ChatMessage](ctx, ch.store, types.ChatMessages) {
		if m.ReceiverID == reader && !m.IsRead {
			n++
		}
	}
	return n
}

// MarkRead marks every unread message from sender to the actor as read
// and returns how many changed.
func (ch *Chat) MarkRead(ctx context.Context, a audit.Actor, sender string) (int, error) {
	n := 0
	for _, m := range store.AllAs[types.ChatMessage](ctx, ch.store, types.ChatMessages) {
		if m.ReceiverID != a.ID || m.SenderID != sender || m.IsRead {
			continue
		}
		m.IsRead = true
		if err := check("marking message read", ch.store.Set(ctx, types.ChatMessages, m.ID, m)); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		ch.record(ctx, audit.Entry{
			Actor:      a,
			Action:     audit.ActionUpdate,
			Target:     audit.EntityMessage,
			TargetID:   sender,
			TargetName: ch.lawyerName(ctx, sender),
			Details:    fmt.Sprintf("%d mesaj", n),
		})
	}
	return n, nil
}
