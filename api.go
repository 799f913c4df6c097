package bedrock

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/eringen/bedrock/cms"
	"github.com/eringen/bedrock/content"
)

const (
	msgInvalidEmail   = "Please enter a valid email address."
	msgTooMany        = "Too many requests. Please try again later."
	msgSubscribeError = "Subscription failed."
	msgInternal       = "Internal server error"
	msgSubscribed     = "Thanks for subscribing!"
)

type searchResponse struct {
	Docs  []SearchResult `json:"docs"`
	Error *string        `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func searchError(msg string) searchResponse {
	return searchResponse{Docs: []SearchResult{}, Error: &msg}
}

// handleAPISearch proxies title search to the CMS for the search overlay.
func (a *App) handleAPISearch(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	if utf8.RuneCountInString(query) < cms.MinQueryLength {
		return c.JSON(http.StatusOK, searchResponse{Docs: []SearchResult{}})
	}

	limit := a.Config.SearchLimit
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		limit = n
	}
	limit = max(1, min(limit, maxSearchLimit))

	list, err := a.CMS.SearchPosts(c.Request().Context(), query, limit)
	if err != nil {
		c.Logger().Errorf("api search %q: %v", query, err)
		var se *cms.StatusError
		if errors.As(err, &se) {
			status := se.Status
			if status == "" {
				status = strconv.Itoa(se.Code) + " " + http.StatusText(se.Code)
			}
			return c.JSON(se.Code, searchError("Failed to search posts: "+status))
		}
		return c.JSON(http.StatusInternalServerError, searchError(searchFailure))
	}

	origin := a.CMS.Origin()
	docs := make([]SearchResult, 0, len(list.Docs))
	for _, p := range list.Docs {
		docs = append(docs, a.searchResult(p, origin))
	}
	return c.JSON(http.StatusOK, searchResponse{Docs: docs})
}

func (a *App) searchResult(p content.Post, origin string) SearchResult {
	f := content.Resolve(p)
	return SearchResult{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		URL:         "/article/" + url.PathEscape(p.Slug) + "/",
		PublishedAt: p.PublishedAt,
		Category:    f.Category,
		Image:       ImageURL(f.ImageURL, a.Config.URL, origin),
		Authors:     f.Authors,
		Excerpt:     content.Summary(p),
	}
}

// handleAPISubscribe proxies a JSON newsletter signup to the CMS and relays
// its response.
func (a *App) handleAPISubscribe(c echo.Context) error {
	if !a.subscribeLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, messageResponse{msgTooMany})
	}

	var req cms.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{msgInvalidEmail})
	}
	data, code, msg := a.subscribe(c, req)
	if data == nil {
		return c.JSON(code, messageResponse{msg})
	}
	return c.JSONBlob(http.StatusOK, data)
}

// handleSubscribeForm is the no-JavaScript signup: the outcome is shown as
// a flash message on the page the form was posted from. Only submissions
// that reach the CMS count against the limit, so a mistyped address can be
// corrected without locking the visitor out.
func (a *App) handleSubscribeForm(c echo.Context) error {
	ip := c.RealIP()
	req := cms.SubscribeRequest{
		Email: c.FormValue("email"),
		Name:  c.FormValue("name"),
	}
	req.Normalize()

	var msg string
	switch {
	case !a.subscribeLimiter.Check(ip):
		msg = msgTooMany
	case req.Validate() != nil:
		msg = msgInvalidEmail
	default:
		a.subscribeLimiter.Record(ip)
		var data json.RawMessage
		data, _, msg = a.subscribe(c, req)
		if data != nil {
			msg = subscribeMessage(data)
		}
	}
	if err := setFlash(c, msg); err != nil {
		c.Logger().Warnf("subscribe form: %v", err)
	}
	return c.Redirect(http.StatusSeeOther, refererPath(c.Request().Referer()))
}

// subscribe validates req and forwards it to the CMS. On failure it
// returns a nil body with the status and message to show.
func (a *App) subscribe(c echo.Context, req cms.SubscribeRequest) (json.RawMessage, int, string) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, http.StatusBadRequest, msgInvalidEmail
	}

	data, err := a.CMS.Subscribe(c.Request().Context(), req)
	if err != nil {
		var se *cms.StatusError
		if errors.As(err, &se) {
			c.Logger().Warnf("subscribe: cms: %v", err)
			msg := se.Message
			if msg == "" {
				msg = msgSubscribeError
			}
			return nil, se.Code, msg
		}
		c.Logger().Errorf("subscribe: %v", err)
		return nil, http.StatusInternalServerError, msgInternal
	}
	return data, http.StatusOK, ""
}

func subscribeMessage(data json.RawMessage) string {
	var resp messageResponse
	if json.Unmarshal(data, &resp) == nil && resp.Message != "" {
		return resp.Message
	}
	return msgSubscribed
}

// refererPath reduces a Referer header to a same-site path.
func refererPath(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
