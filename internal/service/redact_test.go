package service

import (
	"testing"

	"github.com/CivicGate/civigate/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "****5678", MaskPhone("09012345678"))
	assert.Equal(t, "****2345", MaskPhone("12345"))
	assert.Equal(t, "1234", MaskPhone("1234"))
	assert.Equal(t, "12", MaskPhone("12"))
	assert.Equal(t, "", MaskPhone(""))
}

func TestMaskPhoneIdempotent(t *testing.T) {
	once := MaskPhone("09012345678")
	assert.Equal(t, once, MaskPhone(once))
}

func TestMaskPhoneMultibyte(t *testing.T) {
	// Rune-counted: five fullwidth digits keep the last four intact.
	assert.Equal(t, "****１２３４", MaskPhone("０１２３４"))
	assert.Equal(t, "１２３４", MaskPhone("１２３４"))
}

func TestRedactReportViewerOnly(t *testing.T) {
	rep := model.Report{ReportID: "r1", ContactPhone: "09012345678"}

	masked := RedactReport(rep, model.RoleViewer)
	assert.Equal(t, "****5678", masked.ContactPhone)

	assert.Equal(t, "09012345678", RedactReport(rep, model.RoleOperator).ContactPhone)
	assert.Equal(t, "09012345678", RedactReport(rep, model.RoleAdmin).ContactPhone)

	// The input is never mutated.
	assert.Equal(t, "09012345678", rep.ContactPhone)
}

func TestRedactReportsLeavesEmptyContactAlone(t *testing.T) {
	reports := []model.Report{
		{ReportID: "r1", ContactPhone: "09012345678"},
		{ReportID: "r2"},
	}
	out := RedactReports(reports, model.RoleViewer)
	assert.Equal(t, "****5678", out[0].ContactPhone)
	assert.Equal(t, "", out[1].ContactPhone)
}
