package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/emilythestrangee/reddit-companion/backend/internal/apiresult"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

// Inbox selectors accepted by FetchInbox.
const (
	WhereInbox  = "inbox"
	WhereUnread = "unread"
)

var listingSorts = map[string]bool{"hot": true, "new": true, "top": true, "rising": true, "controversial": true}

// IsListingSort reports whether FetchListing accepts sort.
func IsListingSort(sort string) bool {
	return listingSorts[sort]
}

// PostPage is one page of a subreddit listing.
type PostPage struct {
	Posts []models.Post `json:"posts"`
	After string        `json:"after,omitempty"`
}

// SubscriptionPage is one page of the subscribed-subreddits listing.
type SubscriptionPage struct {
	Items []models.Subscription
	After string
}

// FetchInbox lists comment replies and private messages.
func (c *Client) FetchInbox(ctx context.Context, token, where string, limit int) apiresult.Result[[]models.Message] {
	if where != WhereInbox && where != WhereUnread {
		return apiresult.Failure[[]models.Message](0, fmt.Errorf("unknown inbox selector %q", where))
	}
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	res := c.get(ctx, "inbox", token, "/message/"+where, query)
	return apiresult.Map(res, func(body []byte) []models.Message {
		msgs := parseMessages(gjson.GetBytes(body, "data.children"))
		if msgs == nil {
			msgs = []models.Message{}
		}
		return msgs
	})
}

// FetchPost loads a post with its flattened comment tree.
func (c *Client) FetchPost(ctx context.Context, token, id string) apiresult.Result[*models.PostWithComments] {
	res := c.get(ctx, "post", token, "/comments/"+url.PathEscape(id), nil)
	body, err := res.Unwrap()
	if err != nil {
		return apiresult.FromError[*models.PostWithComments](err)
	}

	postData := gjson.GetBytes(body, "0.data.children.0.data")
	if !postData.Exists() {
		return apiresult.Failure[*models.PostWithComments](http.StatusNotFound, fmt.Errorf("post %s: %w", id, ErrNotFound))
	}

	out := &models.PostWithComments{
		Post:     parsePost(postData),
		Comments: flattenComments(gjson.GetBytes(body, "1.data.children"), []models.Comment{}),
	}
	for i := range out.Comments {
		out.Comments[i].PostID = out.Post.ID
	}
	return apiresult.Success(out)
}

// FetchListing returns one page of a subreddit's posts; pass the previous
// page's After to continue.
func (c *Client) FetchListing(ctx context.Context, token, subreddit, sort, after string, limit int) apiresult.Result[PostPage] {
	if !IsListingSort(sort) {
		return apiresult.Failure[PostPage](0, fmt.Errorf("unknown listing sort %q", sort))
	}
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if after != "" {
		query.Set("after", after)
	}
	res := c.get(ctx, "listing", token, "/r/"+url.PathEscape(subreddit)+"/"+sort, query)
	return apiresult.Map(res, func(body []byte) PostPage {
		page := PostPage{Posts: []models.Post{}, After: gjson.GetBytes(body, "data.after").String()}
		gjson.GetBytes(body, "data.children").ForEach(func(_, child gjson.Result) bool {
			if child.Get("kind").String() == models.KindLink {
				page.Posts = append(page.Posts, parsePost(child.Get("data")))
			}
			return true
		})
		return page
	})
}

func (c *Client) FetchSubreddit(ctx context.Context, token, name string) apiresult.Result[*models.Subreddit] {
	res := c.get(ctx, "subreddit", token, "/r/"+url.PathEscape(name)+"/about", nil)
	body, err := res.Unwrap()
	if err != nil {
		return apiresult.FromError[*models.Subreddit](err)
	}
	// unknown subreddits come back as an empty listing rather than a 404
	if gjson.GetBytes(body, "kind").String() != "t5" {
		return apiresult.Failure[*models.Subreddit](http.StatusNotFound, fmt.Errorf("subreddit %s: %w", name, ErrNotFound))
	}
	sub := parseSubreddit(gjson.GetBytes(body, "data"))
	return apiresult.Success(&sub)
}

func (c *Client) FetchRules(ctx context.Context, token, subreddit string) apiresult.Result[[]models.Rule] {
	res := c.get(ctx, "rules", token, "/r/"+url.PathEscape(subreddit)+"/about/rules", nil)
	return apiresult.Map(res, parseRules)
}

func (c *Client) FetchFlairs(ctx context.Context, token, subreddit string) apiresult.Result[[]models.Flair] {
	res := c.get(ctx, "flairs", token, "/r/"+url.PathEscape(subreddit)+"/api/link_flair_v2", nil)
	return apiresult.Map(res, parseFlairs)
}

func (c *Client) FetchUser(ctx context.Context, token, name string) apiresult.Result[*models.UserInfo] {
	res := c.get(ctx, "user", token, "/user/"+url.PathEscape(name)+"/about", nil)
	body, err := res.Unwrap()
	if err != nil {
		return apiresult.FromError[*models.UserInfo](err)
	}
	if gjson.GetBytes(body, "kind").String() != "t2" {
		return apiresult.Failure[*models.UserInfo](http.StatusNotFound, fmt.Errorf("user %s: %w", name, ErrNotFound))
	}
	user := parseUser(gjson.GetBytes(body, "data"))
	return apiresult.Success(&user)
}

// FetchSubscriptions returns one page; pass the previous page's After to continue.
func (c *Client) FetchSubscriptions(ctx context.Context, token, after string) apiresult.Result[SubscriptionPage] {
	query := url.Values{"limit": {"100"}}
	if after != "" {
		query.Set("after", after)
	}
	res := c.get(ctx, "subscriptions", token, "/subreddits/mine/subscriber", query)
	return apiresult.Map(res, func(body []byte) SubscriptionPage {
		return SubscriptionPage{
			Items: parseSubscriptions(gjson.GetBytes(body, "data.children")),
			After: gjson.GetBytes(body, "data.after").String(),
		}
	})
}

// Vote casts dir (1 up, -1 down, 0 clear) on a post or comment fullname.
func (c *Client) Vote(ctx context.Context, token, fullname string, dir int) apiresult.Result[struct{}] {
	if dir < -1 || dir > 1 {
		return apiresult.Failure[struct{}](0, fmt.Errorf("invalid vote direction %d", dir))
	}
	form := url.Values{"id": {fullname}, "dir": {strconv.Itoa(dir)}}
	res := c.postForm(ctx, "vote", token, "/api/vote", form)
	return apiresult.Map(res, func([]byte) struct{} { return struct{}{} })
}

func (c *Client) MarkRead(ctx context.Context, token string, fullnames []string) apiresult.Result[struct{}] {
	if len(fullnames) == 0 {
		return apiresult.Success(struct{}{})
	}
	form := url.Values{"id": {strings.Join(fullnames, ",")}}
	res := c.postForm(ctx, "read_message", token, "/api/read_message", form)
	return apiresult.Map(res, func([]byte) struct{} { return struct{}{} })
}
