package approval

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditdesk/internal/model"
	"auditdesk/pkg/apperr"
)

// --- in-memory fakes ---

// memQueue mirrors the store's partial-unique-index semantics in memory:
// one active (PENDING/APPROVED) row per (org, work product, kind, stage).
type memQueue struct {
	mu    sync.Mutex
	tasks []*model.ApprovalTask
}

func (q *memQueue) findActiveSlot(t *model.ApprovalTask) *model.ApprovalTask {
	for _, row := range q.tasks {
		if row.OrgID == t.OrgID && row.WorkProductID == t.WorkProductID &&
			row.Kind == t.Kind && row.Stage == t.Stage && row.Active() {
			return row
		}
	}
	return nil
}

func (q *memQueue) InsertIfAbsent(_ context.Context, task *model.ApprovalTask) (*model.ApprovalTask, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if existing := q.findActiveSlot(task); existing != nil {
		copied := *existing
		return &copied, false, nil
	}
	task.ID = uuid.New()
	task.CreatedAt = time.Now().UTC()
	stored := *task
	q.tasks = append(q.tasks, &stored)
	copied := stored
	return &copied, true, nil
}

func (q *memQueue) FindByID(_ context.Context, orgID, taskID uuid.UUID) (*model.ApprovalTask, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, row := range q.tasks {
		if row.ID == taskID && row.OrgID == orgID {
			copied := *row
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("approval_not_found")
}

func (q *memQueue) ListActive(_ context.Context, orgID uuid.UUID, kind string, workProductID uuid.UUID) ([]model.ApprovalTask, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []model.ApprovalTask
	for _, row := range q.tasks {
		if row.OrgID == orgID && row.Kind == kind && row.WorkProductID == workProductID && row.Active() {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (q *memQueue) UpdateDecision(_ context.Context, task *model.ApprovalTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, row := range q.tasks {
		if row.ID == task.ID {
			if row.Status != model.ApprovalPending {
				return apperr.Conflict("approval_already_resolved")
			}
			*row = *task
			return nil
		}
	}
	return apperr.NotFound("approval_not_found")
}

func (q *memQueue) rowCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// memProduct is the applier's view of one work product.
type memProduct struct {
	orgID       uuid.UUID
	status      string
	requiresEQR bool
	submittedAt *time.Time
	outcome     *Outcome
	resets      int
}

type memApplier struct {
	mu       sync.Mutex
	products map[uuid.UUID]*memProduct
}

func newMemApplier() *memApplier {
	return &memApplier{products: make(map[uuid.UUID]*memProduct)}
}

func (a *memApplier) add(orgID, id uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.products[id] = &memProduct{orgID: orgID, status: "DRAFT"}
}

func (a *memApplier) get(id uuid.UUID) *memProduct {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.products[id]
}

func (a *memApplier) Snapshot(_ context.Context, orgID, workProductID uuid.UUID) (*Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.products[workProductID]
	if !ok || p.orgID != orgID {
		return nil, apperr.NotFound("work_product_not_found")
	}
	return &Snapshot{
		WorkProductID: workProductID,
		OrgID:         orgID,
		Status:        p.status,
		RequiresEQR:   p.requiresEQR,
		Terminal:      p.status == "APPROVED",
	}, nil
}

func (a *memApplier) MarkSubmitted(_ context.Context, _, workProductID uuid.UUID, submittedAt time.Time, requiresEQR bool) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := a.products[workProductID]
	p.status = "READY_FOR_REVIEW"
	p.submittedAt = &submittedAt
	p.requiresEQR = requiresEQR
	return p.status, nil
}

func (a *memApplier) MarkApproved(_ context.Context, _, workProductID uuid.UUID, outcome Outcome) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := a.products[workProductID]
	p.status = "APPROVED"
	p.outcome = &outcome
	return p.status, nil
}

func (a *memApplier) MarkReset(_ context.Context, _, workProductID uuid.UUID) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := a.products[workProductID]
	p.status = "DRAFT"
	p.submittedAt = nil
	p.resets++
	return p.status, nil
}

type memSink struct {
	mu      sync.Mutex
	entries []*model.ActivityEntry
}

func (s *memSink) Record(_ context.Context, entry *model.ActivityEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *memSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Action)
	}
	return out
}

// --- harness ---

type engineFixture struct {
	engine  *Engine
	queue   *memQueue
	applier *memApplier
	sink    *memSink
	orgID   uuid.UUID
	engID   uuid.UUID
}

func newFixture(t *testing.T, kind string, rule StageRule) *engineFixture {
	t.Helper()
	f := &engineFixture{
		queue:   &memQueue{},
		applier: newMemApplier(),
		sink:    &memSink{},
		orgID:   uuid.New(),
		engID:   uuid.New(),
	}
	f.engine = NewEngine(f.queue, f.sink, nil)
	f.engine.Register(VariantConfig{
		Kind:    kind,
		Stages:  rule,
		Applier: f.applier,
		Actions: ActionSet{
			Submitted: kind + "_SUBMITTED",
			Approved:  kind + "_APPROVED",
			Rejected:  kind + "_REJECTED",
		},
	})
	return f
}

func (f *engineFixture) newProduct() uuid.UUID {
	id := uuid.New()
	f.applier.add(f.orgID, id)
	return id
}

func (f *engineFixture) submit(t *testing.T, kind string, wpID uuid.UUID, requiresEQR bool) []model.ApprovalTask {
	t.Helper()
	tasks, err := f.engine.Submit(context.Background(), Submission{
		Kind:          kind,
		OrgID:         f.orgID,
		EngagementID:  f.engID,
		WorkProductID: wpID,
		RequiresEQR:   requiresEQR,
		SubmittedBy:   uuid.New(),
	})
	require.NoError(t, err)
	return tasks
}

func (f *engineFixture) taskForStage(t *testing.T, tasks []model.ApprovalTask, stage string) model.ApprovalTask {
	t.Helper()
	for _, task := range tasks {
		if task.Stage == stage {
			return task
		}
	}
	t.Fatalf("no task for stage %s", stage)
	return model.ApprovalTask{}
}

var (
	manager    = Reviewer{UserID: uuid.New(), Role: model.RoleManager}
	partner    = Reviewer{UserID: uuid.New(), Role: model.RolePartner}
	eqrPartner = Reviewer{UserID: uuid.New(), Role: model.RolePartner, EQRReviewer: true}
)

// --- tests ---

func TestRequiredStages(t *testing.T) {
	f := newFixture(t, model.KindAuditPlanFreeze, PartnerOnly)

	stages, err := f.engine.RequiredStages(model.KindAuditPlanFreeze, false)
	require.NoError(t, err)
	assert.Equal(t, []string{model.StagePartner}, stages)

	stages, err = f.engine.RequiredStages(model.KindAuditPlanFreeze, true)
	require.NoError(t, err)
	assert.Equal(t, []string{model.StagePartner, model.StageEQR}, stages)

	_, err = f.engine.RequiredStages("NO_SUCH_KIND", false)
	require.Error(t, err)
	assert.Equal(t, "approval_kind_unknown", apperr.CodeOf(err))
}

func TestSubmit_OpensOneTaskPerStage(t *testing.T) {
	f := newFixture(t, model.KindKamDraft, ManagerThenPartner)
	wpID := f.newProduct()

	tasks := f.submit(t, model.KindKamDraft, wpID, true)
	require.Len(t, tasks, 3)

	stages := map[string]bool{}
	for _, task := range tasks {
		assert.Equal(t, model.ApprovalPending, task.Status)
		assert.Equal(t, f.orgID, task.OrgID)
		assert.Equal(t, f.engID, task.EngagementID)
		stages[task.Stage] = true
	}
	assert.True(t, stages[model.StageManager])
	assert.True(t, stages[model.StagePartner])
	assert.True(t, stages[model.StageEQR])

	assert.Equal(t, "READY_FOR_REVIEW", f.applier.get(wpID).status)
	require.NotNil(t, f.applier.get(wpID).submittedAt)
}

func TestSubmit_Idempotent(t *testing.T) {
	f := newFixture(t, model.KindKamDraft, ManagerThenPartner)
	wpID := f.newProduct()

	first := f.submit(t, model.KindKamDraft, wpID, true)
	second := f.submit(t, model.KindKamDraft, wpID, true)

	require.Len(t, first, 3)
	require.Len(t, second, 3)
	assert.Equal(t, 3, f.queue.rowCount(), "resubmission must not duplicate tasks")

	byID := map[uuid.UUID]bool{}
	for _, task := range first {
		byID[task.ID] = true
	}
	for _, task := range second {
		assert.True(t, byID[task.ID], "second submit must return the same task rows")
	}
}

func TestSubmit_TerminalProductConflicts(t *testing.T) {
	f := newFixture(t, model.KindAuditPlanFreeze, PartnerOnly)
	wpID := f.newProduct()

	tasks := f.submit(t, model.KindAuditPlanFreeze, wpID, false)
	_, err := f.engine.Decide(context.Background(), f.orgID, tasks[0].ID, model.ApprovalApproved, partner, "")
	require.NoError(t, err)
	require.Equal(t, "APPROVED", f.applier.get(wpID).status)

	_, err = f.engine.Submit(context.Background(), Submission{
		Kind:          model.KindAuditPlanFreeze,
		OrgID:         f.orgID,
		EngagementID:  f.engID,
		WorkProductID: wpID,
		SubmittedBy:   uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, "work_product_locked", apperr.CodeOf(err))
}

func TestDecide_SingleStageApproval(t *testing.T) {
	f := newFixture(t, model.KindAcceptanceDecision, PartnerOnly)
	wpID := f.newProduct()

	tasks := f.submit(t, model.KindAcceptanceDecision, wpID, false)
	require.Len(t, tasks, 1)

	res, err := f.engine.Decide(context.Background(), f.orgID, tasks[0].ID, model.ApprovalApproved, partner, "looks fine")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", res.Status)
	assert.Equal(t, model.ApprovalApproved, res.Task.Status)
	assert.Equal(t, "looks fine", res.Task.ResolutionNote)
	require.NotNil(t, res.Task.ResolvedByUserID)
	assert.Equal(t, partner.UserID, *res.Task.ResolvedByUserID)

	outcome := f.applier.get(wpID).outcome
	require.NotNil(t, outcome)
	assert.Equal(t, partner.UserID, outcome.ApprovedBy)
	assert.Nil(t, outcome.EQRApprovedBy)
}

func TestDecide_InvalidDecisionValue(t *testing.T) {
	f := newFixture(t, model.KindAcceptanceDecision, PartnerOnly)
	wpID := f.newProduct()
	tasks := f.submit(t, model.KindAcceptanceDecision, wpID, false)

	_, err := f.engine.Decide(context.Background(), f.orgID, tasks[0].ID, "MAYBE", partner, "")
	require.Error(t, err)
	assert.Equal(t, "invalid_decision", apperr.CodeOf(err))
}

func TestDecide_DoubleDecisionConflicts(t *testing.T) {
	f := newFixture(t, model.KindAcceptanceDecision, PartnerOnly)
	wpID := f.newProduct()
	tasks := f.submit(t, model.KindAcceptanceDecision, wpID, false)

	_, err := f.engine.Decide(context.Background(), f.orgID, tasks[0].ID, model.ApprovalApproved, partner, "")
	require.NoError(t, err)

	_, err = f.engine.Decide(context.Background(), f.orgID, tasks[0].ID, model.ApprovalRejected, partner, "changed my mind")
	require.Error(t, err)
	assert.Equal(t, "approval_already_resolved", apperr.CodeOf(err))
}

func TestDecide_InsufficientRole(t *testing.T) {
	f := newFixture(t, model.KindKamDraft, ManagerThenPartner)
	wpID := f.newProduct()
	tasks := f.submit(t, model.KindKamDraft, wpID, true)

	partnerTask := f.taskForStage(t, tasks, model.StagePartner)
	_, err := f.engine.Decide(context.Background(), f.orgID, partnerTask.ID, model.ApprovalApproved, manager, "")
	require.Error(t, err)
	assert.Equal(t, "insufficient_role", apperr.CodeOf(err))

	// Partner rank alone is not enough for the EQR stage.
	eqrTask := f.taskForStage(t, tasks, model.StageEQR)
	_, err = f.engine.Decide(context.Background(), f.orgID, eqrTask.ID, model.ApprovalApproved, partner, "")
	require.Error(t, err)
	assert.Equal(t, "insufficient_role", apperr.CodeOf(err))
}

func TestDecide_EQRGatesApproval(t *testing.T) {
	f := newFixture(t, model.KindAuditPlanFreeze, PartnerOnly)
	wpID := f.newProduct()
	tasks := f.submit(t, model.KindAuditPlanFreeze, wpID, true)
	require.Len(t, tasks, 2)

	partnerTask := f.taskForStage(t, tasks, model.StagePartner)
	res, err := f.engine.Decide(context.Background(), f.orgID, partnerTask.ID, model.ApprovalApproved, partner, "")
	require.NoError(t, err)
	assert.Equal(t, "READY_FOR_REVIEW", res.Status, "partner approval alone must not finalize when EQR is required")
	assert.Nil(t, f.applier.get(wpID).outcome)

	eqrTask := f.taskForStage(t, tasks, model.StageEQR)
	res, err = f.engine.Decide(context.Background(), f.orgID, eqrTask.ID, model.ApprovalApproved, eqrPartner, "")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", res.Status)

	outcome := f.applier.get(wpID).outcome
	require.NotNil(t, outcome)
	assert.Equal(t, partner.UserID, outcome.ApprovedBy, "approval credit goes to the partner stage")
	require.NotNil(t, outcome.EQRApprovedBy)
	assert.Equal(t, eqrPartner.UserID, *outcome.EQRApprovedBy)
	require.NotNil(t, outcome.EQRApprovedAt)
}

func TestDecide_RejectionResetsRegardlessOfOrder(t *testing.T) {
	t.Run("approve then reject", func(t *testing.T) {
		f := newFixture(t, model.KindAuditPlanFreeze, PartnerOnly)
		wpID := f.newProduct()
		tasks := f.submit(t, model.KindAuditPlanFreeze, wpID, true)

		partnerTask := f.taskForStage(t, tasks, model.StagePartner)
		_, err := f.engine.Decide(context.Background(), f.orgID, partnerTask.ID, model.ApprovalApproved, partner, "")
		require.NoError(t, err)

		eqrTask := f.taskForStage(t, tasks, model.StageEQR)
		res, err := f.engine.Decide(context.Background(), f.orgID, eqrTask.ID, model.ApprovalRejected, eqrPartner, "scope gap")
		require.NoError(t, err)
		assert.Equal(t, "DRAFT", res.Status)
		assert.Equal(t, 1, f.applier.get(wpID).resets)
		assert.Nil(t, f.applier.get(wpID).outcome)
	})

	t.Run("reject then approve", func(t *testing.T) {
		f := newFixture(t, model.KindAuditPlanFreeze, PartnerOnly)
		wpID := f.newProduct()
		tasks := f.submit(t, model.KindAuditPlanFreeze, wpID, true)

		partnerTask := f.taskForStage(t, tasks, model.StagePartner)
		_, err := f.engine.Decide(context.Background(), f.orgID, partnerTask.ID, model.ApprovalRejected, partner, "redo")
		require.NoError(t, err)
		require.Equal(t, "DRAFT", f.applier.get(wpID).status)

		// The other stage's approval lands after the reset and must not
		// finalize a round that already failed.
		eqrTask := f.taskForStage(t, tasks, model.StageEQR)
		res, err := f.engine.Decide(context.Background(), f.orgID, eqrTask.ID, model.ApprovalApproved, eqrPartner, "")
		require.NoError(t, err)
		assert.Equal(t, "DRAFT", res.Status)
		assert.Nil(t, f.applier.get(wpID).outcome)
	})
}

func TestResubmit_RecreatesOnlyRejectedStages(t *testing.T) {
	f := newFixture(t, model.KindAuditPlanFreeze, PartnerOnly)
	wpID := f.newProduct()
	tasks := f.submit(t, model.KindAuditPlanFreeze, wpID, true)

	partnerTask := f.taskForStage(t, tasks, model.StagePartner)
	_, err := f.engine.Decide(context.Background(), f.orgID, partnerTask.ID, model.ApprovalApproved, partner, "")
	require.NoError(t, err)

	eqrTask := f.taskForStage(t, tasks, model.StageEQR)
	_, err = f.engine.Decide(context.Background(), f.orgID, eqrTask.ID, model.ApprovalRejected, eqrPartner, "")
	require.NoError(t, err)

	active := f.submit(t, model.KindAuditPlanFreeze, wpID, true)
	require.Len(t, active, 2)
	assert.Equal(t, 3, f.queue.rowCount(), "rejected rows stay as history, one fresh EQR task opens")

	kept := f.taskForStage(t, active, model.StagePartner)
	assert.Equal(t, partnerTask.ID, kept.ID, "approved partner task survives resubmission")
	assert.Equal(t, model.ApprovalApproved, kept.Status)

	fresh := f.taskForStage(t, active, model.StageEQR)
	assert.NotEqual(t, eqrTask.ID, fresh.ID)
	assert.Equal(t, model.ApprovalPending, fresh.Status)

	// Completing the fresh EQR task now finalizes the round.
	res, err := f.engine.Decide(context.Background(), f.orgID, fresh.ID, model.ApprovalApproved, eqrPartner, "")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", res.Status)
}

func TestDecide_ManagerThenPartnerFullRound(t *testing.T) {
	f := newFixture(t, model.KindKamDraft, ManagerThenPartner)
	wpID := f.newProduct()
	tasks := f.submit(t, model.KindKamDraft, wpID, true)
	require.Len(t, tasks, 3)

	res, err := f.engine.Decide(context.Background(), f.orgID, f.taskForStage(t, tasks, model.StageManager).ID, model.ApprovalApproved, manager, "")
	require.NoError(t, err)
	assert.Equal(t, "READY_FOR_REVIEW", res.Status)

	res, err = f.engine.Decide(context.Background(), f.orgID, f.taskForStage(t, tasks, model.StagePartner).ID, model.ApprovalApproved, partner, "")
	require.NoError(t, err)
	assert.Equal(t, "READY_FOR_REVIEW", res.Status)

	res, err = f.engine.Decide(context.Background(), f.orgID, f.taskForStage(t, tasks, model.StageEQR).ID, model.ApprovalApproved, eqrPartner, "")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", res.Status)

	outcome := f.applier.get(wpID).outcome
	require.NotNil(t, outcome)
	assert.Equal(t, partner.UserID, outcome.ApprovedBy)
	require.NotNil(t, outcome.EQRApprovedBy)
	assert.Equal(t, eqrPartner.UserID, *outcome.EQRApprovedBy)
}

func TestDecide_UnknownTask(t *testing.T) {
	f := newFixture(t, model.KindAcceptanceDecision, PartnerOnly)
	_, err := f.engine.Decide(context.Background(), f.orgID, uuid.New(), model.ApprovalApproved, partner, "")
	require.Error(t, err)
	assert.Equal(t, "approval_not_found", apperr.CodeOf(err))
}

func TestDecide_OtherOrgTaskInvisible(t *testing.T) {
	f := newFixture(t, model.KindAcceptanceDecision, PartnerOnly)
	wpID := f.newProduct()
	tasks := f.submit(t, model.KindAcceptanceDecision, wpID, false)

	_, err := f.engine.Decide(context.Background(), uuid.New(), tasks[0].ID, model.ApprovalApproved, partner, "")
	require.Error(t, err)
	assert.Equal(t, "approval_not_found", apperr.CodeOf(err))
}

func TestEngine_RecordsActivity(t *testing.T) {
	f := newFixture(t, model.KindAcceptanceDecision, PartnerOnly)
	wpID := f.newProduct()

	tasks := f.submit(t, model.KindAcceptanceDecision, wpID, false)
	_, err := f.engine.Decide(context.Background(), f.orgID, tasks[0].ID, model.ApprovalApproved, partner, "")
	require.NoError(t, err)

	actions := f.sink.actions()
	assert.Contains(t, actions, model.KindAcceptanceDecision+"_SUBMITTED")
	assert.Contains(t, actions, model.KindAcceptanceDecision+"_APPROVAL_APPROVED")
	assert.Contains(t, actions, model.KindAcceptanceDecision+"_APPROVED")
}
