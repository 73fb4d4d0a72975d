package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoerceArraysWrapsScalars(t *testing.T) {
	specs := []FieldSpec{
		{FieldID: "labels", Type: FieldTypeMultiValue},
		{FieldID: "components", Type: FieldTypeMultiValue},
		{FieldID: "summary", Type: FieldTypeText},
	}
	values := FieldValueMap{
		"labels":     "hardware",
		"components": []any{"printer"},
		"summary":    "keep me scalar",
	}

	values.CoerceArrays(specs)

	require.Equal(t, []any{"hardware"}, values["labels"])
	require.Equal(t, []any{"printer"}, values["components"])
	require.Equal(t, "keep me scalar", values["summary"])
}

func TestCoerceArraysIgnoresAbsentFields(t *testing.T) {
	specs := []FieldSpec{{FieldID: "labels", Type: FieldTypeMultiValue}}
	values := FieldValueMap{}
	values.CoerceArrays(specs)
	require.NotContains(t, values, "labels")
}

func TestSubscriptionCanCreateTicket(t *testing.T) {
	require.True(t, Subscription{MaxTickets: 1, TicketsUsed: 0}.CanCreateTicket())
	require.False(t, Subscription{MaxTickets: 1, TicketsUsed: 1}.CanCreateTicket())
}

func TestCompanyIsSetupComplete(t *testing.T) {
	company := Company{JiraConfig: JiraConfig{
		SetupStatus:   SetupStatusCompleted,
		SiteID:        "acme",
		ServiceDeskID: "10",
	}}
	require.True(t, company.IsSetupComplete())

	company.JiraConfig.ServiceDeskID = ""
	require.False(t, company.IsSetupComplete())

	company.JiraConfig.ServiceDeskID = "10"
	company.JiraConfig.SetupStatus = SetupStatusInProgress
	require.False(t, company.IsSetupComplete())
}
