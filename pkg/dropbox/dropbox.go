package dropbox

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"droplog/internal/utils"
	"droplog/pkg/whttp"
)

const (
	DefaultBaseURL = "https://api.dropboxapi.com"

	eventsPath         = "/2/team_log/get_events"
	eventsContinuePath = "/2/team_log/get_events/continue"
)

// Page is one unit of paginated team_log response data, kept opaque beyond
// the event count used for reporting.
type Page struct {
	Index  int
	Body   []byte
	Events int
}

type Client struct {
	// BaseURL can be pointed at a test server.
	BaseURL string

	token string
	http  *retryablehttp.Client
}

func NewClient(token string, client *retryablehttp.Client) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		token:   token,
		http:    client,
	}
}

// FetchEvents pages through the event log for the window, calling fn once
// per page in order. It keeps requesting until the API reports no more
// pages, and stops on the first fatal error or the first error returned
// by fn.
func (c *Client) FetchEvents(ctx context.Context, window FetchWindow, fn func(Page) error) error {
	body, err := json.Marshal(map[string]any{
		"time": map[string]string{
			"start_time": window.Start.Format(TimeFormat),
			"end_time":   window.End.Format(TimeFormat),
		},
	})
	if err != nil {
		return err
	}

	target := c.BaseURL + eventsPath

	for index := 0; ; index++ {
		res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
			Method: http.MethodPost,
			URL:    target,
			Body:   body,
			Headers: []whttp.WHTTPHeader{
				{Name: "Accept", Value: "application/json"},
				{Name: "Content-Type", Value: "application/json"},
				{Name: "Authorization", Value: "Bearer " + c.token},
			},
		}, c.http)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &TransientNetworkError{Err: err}
		}

		switch res.StatusCode {
		case http.StatusOK:
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{StatusCode: res.StatusCode, Body: res.BodyString}
		default:
			return &APIError{StatusCode: res.StatusCode, Body: res.BodyString}
		}

		events := int(gjson.Get(res.BodyString, "events.#").Int())
		utils.Log.Debug("page ", index, ": ", events, " events, ", len(res.BodyString), " bytes")

		if err := fn(Page{Index: index, Body: []byte(res.BodyString), Events: events}); err != nil {
			return err
		}

		if !gjson.Get(res.BodyString, "has_more").Bool() {
			break
		}

		cursor := gjson.Get(res.BodyString, "cursor").Str
		if cursor == "" {
			return &APIError{StatusCode: res.StatusCode, Body: "has_more set but no cursor in response"}
		}
		target = c.BaseURL + eventsContinuePath
		body, err = json.Marshal(map[string]string{"cursor": cursor})
		if err != nil {
			return err
		}
	}

	return nil
}
