package rt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `id: ticket/101
Subject: Cannot access dataset
Status: open
Queue: help
Owner: jdoe
Creator: alice
Requestors: alice@example.com, bob@example.com
Created: Mon Aug 4 10:00:00 2025
Started: Mon Aug 4 10:30:00 2025
Resolved: Not set
CF.{Company name}: ACME Corp
CF.{Domain}: mobility,data

--

id: ticket/102
Subject: API quota question
Status: resolved
Queue: help
Owner: Nobody
Created: Tue Aug 5 09:15:00 2025
Resolved: Wed Aug 6 12:00:00 2025`

func TestParseRecords(t *testing.T) {
	tickets, err := parseRecords(sampleBody)
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	first := tickets[0]
	assert.Equal(t, 101, first.ID)
	assert.Equal(t, "Cannot access dataset", first.Subject)
	assert.Equal(t, "open", first.Status)
	assert.Equal(t, "help", first.Queue)
	assert.Equal(t, "jdoe", first.Owner)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, first.Requestors)
	assert.Equal(t, time.Date(2025, 8, 4, 10, 0, 0, 0, time.UTC), first.Created)
	assert.Equal(t, 30*time.Minute, first.Started.Sub(first.Created))
	assert.True(t, first.Resolved.IsZero(), "Not set dates stay zero")
	assert.Equal(t, "ACME Corp", first.CustomField("CF.{Company name}"))
	assert.Equal(t, "mobility,data", first.CustomField("CF.{Domain}"))

	second := tickets[1]
	assert.Equal(t, 102, second.ID)
	assert.Equal(t, "resolved", second.Status)
	assert.True(t, second.Started.IsZero(), "absent dates stay zero")
	assert.Empty(t, second.CustomField("CF.{Company name}"))
}

func TestParseRecordsContinuationLines(t *testing.T) {
	body := "id: ticket/7\nSubject: first line\n    second line\nStatus: open\nCreated: Mon Aug 4 10:00:00 2025"
	tickets, err := parseRecords(body)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "first line\nsecond line", tickets[0].Subject)
}

func TestParseRecordsRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not key value", "this is not a record at all"},
		{"missing id", "Subject: no id here\nStatus: open"},
		{"bad id", "id: ticket/abc\nStatus: open"},
		{"bad timestamp", "id: ticket/1\nCreated: yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRecords(tt.body)
			var parseErr *ParseError
			require.Error(t, err)
			assert.True(t, errors.As(err, &parseErr), "want ParseError, got %T", err)
		})
	}
}

func TestParseRecordsEmptyFieldValue(t *testing.T) {
	// RT renders empty fields with no trailing space after the colon.
	body := "id: ticket/3\nOwner:\nCF.{Company name}:\nStatus: open"
	tickets, err := parseRecords(body)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Empty(t, tickets[0].Owner)
	assert.Equal(t, "open", tickets[0].Status)
}

func TestParseRecordsZeroPaddedDay(t *testing.T) {
	body := "id: ticket/9\nCreated: Mon Aug 04 10:00:00 2025"
	tickets, err := parseRecords(body)
	require.NoError(t, err)
	assert.Equal(t, 4, tickets[0].Created.Day())
}
