package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPayload = `{
	"search": {"shouldShowCategoryColumn": true, "shouldShowTagColumn": false, "shouldShowTaxColumn": true},
	"transaction_t2": {"amount": 1200, "merchant": "Coffee Shop", "reportID": "r1", "accountID": "101", "created": "2024-03-01 09:00:00"},
	"report_r1": {"type": "expense", "reportName": "March travel", "total": 5400, "accountID": "101", "managerID": "102"},
	"transaction_t1": {"transactionID": "t1", "amount": 4200, "merchant": "(none)", "reportID": "r1", "accountID": "101", "created": "2024-02-28 10:00:00", "modifiedCreated": "2024-03-02 10:00:00"},
	"reportActions_r9": {
		"a2": {"accountID": "102", "created": "2024-03-05 12:00:00", "message": "later"},
		"a1": {"accountID": "101", "created": "2024-03-04 12:00:00", "message": "earlier"}
	},
	"personalDetailsList": {
		"101": {"accountID": "101", "displayName": "Ana García", "login": "ana@corp.example"},
		"102": {"accountID": "102", "login": "manager@corp.example"}
	},
	"somethingElse": [1, 2, 3]
}`

func TestSearchResults_UnmarshalJSON(t *testing.T) {
	var results SearchResults
	require.NoError(t, json.Unmarshal([]byte(resultsPayload), &results))

	assert.True(t, results.Metadata.ShouldShowCategoryColumn)
	assert.False(t, results.Metadata.ShouldShowTagColumn)
	assert.True(t, results.Metadata.ShouldShowTaxColumn)

	require.Len(t, results.Reports, 1)
	assert.Equal(t, "r1", results.Reports[0].ReportID)
	assert.Equal(t, "March travel", results.Reports[0].ReportName)
	require.NotNil(t, results.Reports[0].Total)
	assert.Equal(t, int64(5400), *results.Reports[0].Total)

	require.Len(t, results.PersonalDetails, 2)
	assert.Equal(t, "Ana García", results.PersonalDetails["101"].DisplayName)
}

func TestSearchResults_TransactionsKeepDocumentOrder(t *testing.T) {
	var results SearchResults
	require.NoError(t, json.Unmarshal([]byte(resultsPayload), &results))

	require.Len(t, results.Transactions, 2)
	assert.Equal(t, "t2", results.Transactions[0].TransactionID)
	assert.Equal(t, "t1", results.Transactions[1].TransactionID)
}

func TestSearchResults_IDFallsBackToKeySuffix(t *testing.T) {
	var results SearchResults
	require.NoError(t, json.Unmarshal([]byte(resultsPayload), &results))

	// transaction_t2 carries no transactionID field in its body.
	assert.Equal(t, "t2", results.Transactions[0].TransactionID)
	assert.Equal(t, "r1", results.Reports[0].ReportID)
}

func TestSearchResults_ReportActionsSortedByID(t *testing.T) {
	var results SearchResults
	require.NoError(t, json.Unmarshal([]byte(resultsPayload), &results))

	require.Len(t, results.ReportActions, 2)
	assert.Equal(t, "a1", results.ReportActions[0].ReportActionID)
	assert.Equal(t, "a2", results.ReportActions[1].ReportActionID)
	assert.Equal(t, "r9", results.ReportActions[0].ReportID)
	assert.Equal(t, "r9", results.ReportActions[1].ReportID)
}

func TestSearchResults_UnknownKeysAreSkipped(t *testing.T) {
	var results SearchResults
	require.NoError(t, json.Unmarshal([]byte(`{"mystery": {"deep": [true]}, "transaction_x": {"amount": 1}}`), &results))
	require.Len(t, results.Transactions, 1)
}

func TestSearchResults_RejectsNonObjectPayload(t *testing.T) {
	var results SearchResults
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &results))
}

func TestSearchResults_Details(t *testing.T) {
	var results SearchResults
	require.NoError(t, json.Unmarshal([]byte(resultsPayload), &results))

	assert.Equal(t, "ana@corp.example", results.Details("101").Login)
	assert.Equal(t, EmptyIdentity, results.Details("999"))
}

func TestTransaction_EffectiveDate(t *testing.T) {
	txn := Transaction{Created: "2024-02-28 10:00:00"}
	assert.Equal(t, "2024-02-28 10:00:00", txn.EffectiveDate())

	txn.ModifiedCreated = "2024-03-02 10:00:00"
	assert.Equal(t, "2024-03-02 10:00:00", txn.EffectiveDate())
}
