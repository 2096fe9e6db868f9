package rt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultTimeout = 30 * time.Second

// statusLine matches the first line of every RT REST 1.0 response,
// e.g. "RT/4.4.4 200 Ok" or "RT/4.4.4 401 Credentials required".
var statusLine = regexp.MustCompile(`^RT/\S+ (\d{3}) (.*)$`)

// Query describes one ticket search. Fields is the comma-separated list of
// ticket fields RT should include in the response. When Year is non-zero the
// search is windowed to tickets created in that calendar year.
type Query struct {
	Query  string
	Fields string
	Year   int
}

// Client talks to an RT REST 1.0 endpoint. Credentials are passed on every
// request; the session cookie RT hands out on Login is kept in a jar so
// subsequent searches reuse it. Every call is a single synchronous round
// trip: no retries, no caching.
type Client struct {
	baseURL  string
	username string
	secret   string
	http     *http.Client
	log      *logrus.Entry
}

// NewClient builds a client for the RT instance at baseURL (the REST 1.0
// root, trailing slash included, e.g. "https://rt.example.com/REST/1.0/").
func NewClient(baseURL, username, secret string, log *logrus.Entry) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL:  baseURL,
		username: username,
		secret:   secret,
		http:     &http.Client{Jar: jar, Timeout: defaultTimeout},
		log:      log,
	}
}

// Login establishes an RT session. RT answers 200 at the HTTP layer even for
// bad credentials; success is signalled by the RT status line in the body.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{"user": {c.username}, "pass": {c.secret}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &RequestError{Op: "login", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Op: "login", Err: err}
	}
	if _, _, err := splitStatus("login", string(body)); err != nil {
		return err
	}
	c.log.WithField("user", c.username).Info("logged in to RT")
	return nil
}

// Logout ends the RT session. Errors are returned but callers typically only
// log them; the session expires server-side regardless.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"logout", nil)
	if err != nil {
		return &RequestError{Op: "logout", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Op: "logout", Err: err}
	}
	resp.Body.Close()
	return nil
}

// Search runs one ticket search and returns the parsed records in RT's
// response order. On any failure nothing is returned: a fetch either fully
// succeeds or fails with an AuthError, RequestError, or ParseError.
func (c *Client) Search(ctx context.Context, q Query) ([]Ticket, error) {
	query := q.Query
	if q.Year != 0 {
		query = fmt.Sprintf("%s AND ( Created > '%d-12-31' AND Created < '%d-01-01' )", query, q.Year-1, q.Year+1)
	}

	params := url.Values{
		"user":   {c.username},
		"pass":   {c.secret},
		"fields": {q.Fields},
		"query":  {query},
	}
	searchURL := c.baseURL + "search/ticket?" + params.Encode()

	c.log.WithFields(logrus.Fields{"query": query, "year": q.Year}).Debug("searching RT")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL, nil)
	if err != nil {
		return nil, &RequestError{Op: "search", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Op: "search", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Op: "search", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{Op: "search", Err: fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)}
	}

	_, rest, err := splitStatus("search", string(body))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) == "" || strings.TrimSpace(rest) == "No matching results." {
		return nil, nil
	}

	tickets, err := parseRecords(strings.Trim(rest, "\n"))
	if err != nil {
		return nil, err
	}
	c.log.WithField("tickets", len(tickets)).Debug("search complete")
	return tickets, nil
}

// splitStatus validates the RT status line at the top of a response body and
// returns the status message and the remainder of the body.
func splitStatus(op, body string) (message, rest string, err error) {
	first, rest, _ := strings.Cut(body, "\n")
	m := statusLine.FindStringSubmatch(strings.TrimRight(first, "\r"))
	if m == nil {
		return "", "", &ParseError{Detail: fmt.Sprintf("missing RT status line, got %q", first)}
	}
	code, message := m[1], m[2]
	switch code {
	case "200":
		return message, rest, nil
	case "401":
		return "", "", &AuthError{Message: message}
	default:
		return "", "", &RequestError{Op: op, Err: fmt.Errorf("RT returned %s %s", code, message)}
	}
}
