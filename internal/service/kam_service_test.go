package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditdesk/internal/model"
	"auditdesk/pkg/apperr"
)

func completeDraft() *model.KamDraft {
	return &model.KamDraft{
		Heading:        "Revenue recognition on long-term contracts",
		WhyKam:         "Significant estimation uncertainty in stage of completion",
		HowAddressed:   "Tested contract milestones and recomputed percentage of completion",
		ResultsSummary: "No material misstatement identified",
		ProceduresRefs: `[{"procedureId":"7f8e6c1a-0000-0000-0000-000000000001","isaRefs":["ISA 540.18"]}]`,
		EvidenceRefs:   `[{"evidenceId":"7f8e6c1a-0000-0000-0000-000000000002","note":"contract file"}]`,
	}
}

func TestValidateDraftForSubmit_Complete(t *testing.T) {
	procedures, evidence, err := ValidateDraftForSubmit(completeDraft())
	require.NoError(t, err)
	require.Len(t, procedures, 1)
	assert.Equal(t, []string{"ISA 540.18"}, procedures[0].ISARefs)
	require.Len(t, evidence, 1)
	assert.Equal(t, "7f8e6c1a-0000-0000-0000-000000000002", evidence[0].EvidenceID)
}

func TestValidateDraftForSubmit_Incomplete(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(d *model.KamDraft)
		wantCode string
	}{
		{"missing heading", func(d *model.KamDraft) { d.Heading = "" }, "draft_fields_incomplete"},
		{"missing why", func(d *model.KamDraft) { d.WhyKam = "" }, "draft_fields_incomplete"},
		{"missing how addressed", func(d *model.KamDraft) { d.HowAddressed = "" }, "draft_fields_incomplete"},
		{"missing results", func(d *model.KamDraft) { d.ResultsSummary = "" }, "draft_fields_incomplete"},
		{"empty procedures", func(d *model.KamDraft) { d.ProceduresRefs = `[]` }, "procedures_required"},
		{"malformed procedures json", func(d *model.KamDraft) { d.ProceduresRefs = `{not json` }, "procedures_required"},
		{"procedure without id", func(d *model.KamDraft) {
			d.ProceduresRefs = `[{"procedureId":"","isaRefs":["ISA 315.12"]}]`
		}, "procedure_id_required"},
		{"procedure without isa refs", func(d *model.KamDraft) {
			d.ProceduresRefs = `[{"procedureId":"7f8e6c1a-0000-0000-0000-000000000001","isaRefs":[]}]`
		}, "isa_references_required"},
		{"empty evidence", func(d *model.KamDraft) { d.EvidenceRefs = `[]` }, "evidence_required"},
		{"malformed evidence json", func(d *model.KamDraft) { d.EvidenceRefs = `""` }, "evidence_required"},
		{"evidence without id", func(d *model.KamDraft) {
			d.EvidenceRefs = `[{"evidenceId":""}]`
		}, "evidence_id_required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := completeDraft()
			tt.mutate(draft)
			_, _, err := ValidateDraftForSubmit(draft)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
		})
	}
}
