package office

import (
	"context"
	"strings"

	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Communications manages the contact history with clients.
type Communications struct{ *service }

func validateCommunication(c types.ClientCommunication) error {
	switch {
	case c.ClientID == "":
		return missing("client_id")
	case strings.TrimSpace(c.Content) == "":
		return missing("content")
	case c.Type == "":
		return missing("type")
	case c.Date == "":
		return missing("date")
	}
	return nil
}

func commName(c types.ClientCommunication) string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.Type
}

// Add stores a new communication record.
func (cm *Communications) Add(ctx context.Context, a audit.Actor, c types.ClientCommunication) (types.ClientCommunication, error) {
	if err := validateCommunication(c); err != nil {
		return types.ClientCommunication{}, err
	}
	c.ID = ""
	c.CreatedAt = cm.stamp()
	res := cm.store.Push(ctx, types.ClientCommunications, c)
	if err := check("adding communication", res); err != nil {
		return types.ClientCommunication{}, err
	}
	c.ID = res.Key
	cm.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionCreate,
		Target:     audit.EntityCommunication,
		TargetID:   c.ID,
		TargetName: commName(c),
		Details:    "Tür: " + c.Type,
	})
	return c, nil
}

// Update overwrites an existing communication record.
func (cm *Communications) Update(ctx context.Context, a audit.Actor, c types.ClientCommunication) (types.ClientCommunication, error) {
	if c.ID == "" {
		return types.ClientCommunication{}, missing("id")
	}
	if err := validateCommunication(c); err != nil {
		return types.ClientCommunication{}, err
	}
	old, ok := store.GetAs[types.ClientCommunication](ctx, cm.store, types.ClientCommunications, c.ID)
	if !ok {
		return types.ClientCommunication{}, notFound(types.ClientCommunications, c.ID)
	}
	if c.CreatedAt == "" {
		c.CreatedAt = old.CreatedAt
	}
	if err := check("updating communication", cm.store.Set(ctx, types.ClientCommunications, c.ID, c)); err != nil {
		return types.ClientCommunication{}, err
	}
	cm.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionUpdate,
		Target:     audit.EntityCommunication,
		TargetID:   c.ID,
		TargetName: commName(c),
		Details:    "Tür: " + c.Type,
	})
	return c, nil
}

// Delete removes a communication record.
func (cm *Communications) Delete(ctx context.Context, a audit.Actor, id string) error {
	if id == "" {
		return missing("id")
	}
	old, ok := store.GetAs[types.ClientCommunication](ctx, cm.store, types.ClientCommunications, id)
	if err := check("deleting communication", cm.store.Remove(ctx, types.ClientCommunications+"/"+id)); err != nil {
		return err
	}
	name := types.Unknown
	if ok {
		name = commName(old)
	}
	cm.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionDelete,
		Target:     audit.EntityCommunication,
		TargetID:   id,
		TargetName: name,
	})
	return nil
}

// ForClient returns the client's communications, latest date first.
func (cm *Communications) ForClient(ctx context.Context, clientID string) []types.ClientCommunication {
	var out []types.ClientCommunication
	for _, c := range store.AllAs[types.ClientCommunication](ctx, cm.store, types.ClientCommunications) {
		if c.ClientID == clientID {
			out = append(out, c)
		}
	}
	sortNewest(out, func(c types.ClientCommunication) string { return c.Date })
	return out
}
