package office

import (
	"context"
	"sort"
	"strconv"

	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// CaseProcess tracks the stages a case goes through.
type CaseProcess struct{ *service }

// Step is one stage a case went through, with the stage name resolved.
type Step struct {
	types.CaseProcessStage
	StageName string `json:"stage_name"`
}

// SeedCaseStages writes the default stages when the case_stages
// collection is empty, keyed by their order, and returns how many were
// written.
func (p *CaseProcess) SeedCaseStages(ctx context.Context) (int, error) {
	if p.store.GetFirst(ctx, types.CaseStages) != nil {
		return 0, nil
	}
	n := 0
	for _, st := range types.DefaultCaseStages() {
		if err := check("seeding case stages", p.store.Set(ctx, types.CaseStages, strconv.Itoa(st.OrderIndex), st)); err != nil {
			return n, err
		}
		n++
	}
	p.logger.InfoContext(ctx, "seeded case stages", "count", n)
	return n, nil
}

// Stages returns the stages in order.
func (p *CaseProcess) Stages(ctx context.Context) []types.CaseStage {
	out := store.AllAs[types.CaseStage](ctx, p.store, types.CaseStages)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

// Advance records that the case reached stageID. Reaching the final
// stage closes the case.
func (p *CaseProcess) Advance(ctx context.Context, a audit.Actor, caseID, stageID, note string) (Step, error) {
	if caseID == "" {
		return Step{}, missing("case_id")
	}
	if stageID == "" {
		return Step{}, missing("stage_id")
	}
	stage, ok := store.GetAs[types.CaseStage](ctx, p.store, types.CaseStages, stageID)
	if !ok {
		return Step{}, notFound(types.CaseStages, stageID)
	}
	c, ok := store.GetAs[types.Case](ctx, p.store, types.Cases, caseID)
	if !ok {
		return Step{}, notFound(types.Cases, caseID)
	}

	ps := types.CaseProcessStage{CaseID: caseID, StageID: stageID, Note: note, CreatedAt: p.stamp()}
	res := p.store.Push(ctx, types.CaseProcessStages, ps)
	if err := check("advancing case", res); err != nil {
		return Step{}, err
	}
	ps.ID = res.Key

	if stage.Name == types.FinalStage && c.Status != types.CaseClosed {
		c.Status = types.CaseClosed
		c.UpdatedAt = ps.CreatedAt
		if err := check("closing case", p.store.Set(ctx, types.Cases, caseID, c)); err != nil {
			return Step{}, err
		}
	}

	p.record(ctx, audit.Entry{
		Actor:       a,
		Action:      audit.ActionUpdate,
		Target:      audit.EntityCase,
		TargetID:    caseID,
		TargetName:  c.Title,
		Description: "Dava aşaması eklendi: " + stage.Name,
		Details:     note,
	})
	return Step{CaseProcessStage: ps, StageName: stage.Name}, nil
}

// History returns the stages the case went through, oldest first.
func (p *CaseProcess) History(ctx context.Context, caseID string) []Step {
	names := map[string]string{}
	for _, st := range store.AllAs[types.CaseStage](ctx, p.store, types.CaseStages) {
		names[st.ID] = st.Name
	}
	var out []Step
	for _, ps := range store.AllAs[types.CaseProcessStage](ctx, p.store, types.CaseProcessStages) {
		if ps.CaseID != caseID {
			continue
		}
		name, ok := names[ps.StageID]
		if !ok {
			name = types.Unknown
		}
		out = append(out, Step{CaseProcessStage: ps, StageName: name})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
