package office

import (
	"context"

	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Documents manages document metadata.
type Documents struct{ *service }

// Add stores the metadata of an uploaded document.
func (d *Documents) Add(ctx context.Context, a audit.Actor, doc types.Document) (types.Document, error) {
	switch {
	case doc.Title == "":
		return types.Document{}, missing("title")
	case doc.FileName == "":
		return types.Document{}, missing("file_name")
	}
	doc.ID = ""
	if doc.Category == "" {
		doc.Category = types.DocumentCategories[len(types.DocumentCategories)-1]
	}
	doc.CreatedAt = d.stamp()

	res := d.store.Push(ctx, types.Documents, doc)
	if err := check("adding document", res); err != nil {
		return types.Document{}, err
	}
	doc.ID = res.Key
	d.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionCreate,
		Target:     audit.EntityDocument,
		TargetID:   doc.ID,
		TargetName: doc.Title,
		Details:    "Dosya: " + doc.FileName,
	})
	return doc, nil
}

// Delete removes the metadata. The file itself is not touched.
func (d *Documents) Delete(ctx context.Context, a audit.Actor, id string) error {
	if id == "" {
		return missing("id")
	}
	old, ok := store.GetAs[types.Document](ctx, d.store, types.Documents, id)
	if err := check("deleting document", d.store.Remove(ctx, types.Documents+"/"+id)); err != nil {
		return err
	}
	name := types.Unknown
	if ok {
		name = old.Title
	}
	d.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionDelete,
		Target:     audit.EntityDocument,
		TargetID:   id,
		TargetName: name,
	})
	return nil
}

// List returns documents newest first, only those of caseID when it is
// not empty.
func (d *Documents) List(ctx context.Context, caseID string) []types.Document {
	var out []types.Document
	for _, doc := range store.AllAs[types.Document](ctx, d.store, types.Documents) {
		if caseID == "" || doc.CaseID == caseID {
			out = append(out, doc)
		}
	}
	sortNewest(out, func(x types.Document) string { return x.CreatedAt })
	return out
}
