package rt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeFormat is the timestamp layout used by the RT REST 1.0 interface,
// e.g. "Tue Aug 26 10:41:34 2025".
const TimeFormat = "Mon Jan 2 15:04:05 2006"

// notSet is what RT returns for date fields that were never populated.
const notSet = "Not set"

// Ticket is a single ticket record fetched from RT. Fields that RT did not
// include in the response (or that are "Not set") are zero values. Custom
// fields keep their full RT name, e.g. "CF.{Company name}".
type Ticket struct {
	ID           int
	Subject      string
	Status       string
	Queue        string
	Owner        string
	Creator      string
	Requestors   []string
	Created      time.Time
	Started      time.Time
	Resolved     time.Time
	LastUpdated  time.Time
	CustomFields map[string]string
}

// CustomField returns the value of a custom field by its full RT name
// ("CF.{Company name}"), or "" when absent.
func (t Ticket) CustomField(name string) string {
	return t.CustomFields[name]
}

// parseRecords turns the body of an RT search response (after the status
// line) into tickets. Records are separated by lines containing only "--";
// each record is a block of "Key: value" lines, with multi-line values
// indented on continuation lines.
func parseRecords(body string) ([]Ticket, error) {
	var tickets []Ticket
	for _, block := range strings.Split(body, "\n--\n") {
		fields, err := parseBlock(block)
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		ticket, err := ticketFromFields(fields)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

func parseBlock(block string) (map[string]string, error) {
	fields := map[string]string{}
	lastKey := ""
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Continuation of the previous value.
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && lastKey != "" {
			fields[lastKey] += "\n" + strings.TrimSpace(line)
			continue
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			// RT renders empty fields as "Key:" with no trailing space.
			if k, found := strings.CutSuffix(line, ":"); found {
				fields[k] = ""
				lastKey = k
				continue
			}
			return nil, &ParseError{Detail: fmt.Sprintf("line %q is not a key: value pair", line)}
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
		lastKey = strings.TrimSpace(key)
	}
	return fields, nil
}

func ticketFromFields(fields map[string]string) (Ticket, error) {
	rawID, ok := fields["id"]
	if !ok {
		return Ticket{}, &ParseError{Detail: "record has no id field"}
	}
	// Search responses render ids as "ticket/123".
	rawID = strings.TrimPrefix(rawID, "ticket/")
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return Ticket{}, &ParseError{Detail: fmt.Sprintf("bad ticket id %q", fields["id"])}
	}

	ticket := Ticket{
		ID:      id,
		Subject: fields["Subject"],
		Status:  fields["Status"],
		Queue:   fields["Queue"],
		Owner:   fields["Owner"],
		Creator: fields["Creator"],
	}
	if r := fields["Requestors"]; r != "" {
		for _, addr := range strings.Split(r, ",") {
			ticket.Requestors = append(ticket.Requestors, strings.TrimSpace(addr))
		}
	}

	dates := []struct {
		key string
		dst *time.Time
	}{
		{"Created", &ticket.Created},
		{"Started", &ticket.Started},
		{"Resolved", &ticket.Resolved},
		{"LastUpdated", &ticket.LastUpdated},
	}
	for _, d := range dates {
		value, ok := fields[d.key]
		if !ok || value == "" || value == notSet {
			continue
		}
		parsed, err := time.Parse(TimeFormat, value)
		if err != nil {
			return Ticket{}, &ParseError{Detail: fmt.Sprintf("ticket %d: bad %s timestamp %q", id, d.key, value)}
		}
		*d.dst = parsed
	}

	for key, value := range fields {
		if strings.HasPrefix(key, "CF.{") {
			if ticket.CustomFields == nil {
				ticket.CustomFields = map[string]string{}
			}
			ticket.CustomFields[key] = value
		}
	}
	return ticket, nil
}
