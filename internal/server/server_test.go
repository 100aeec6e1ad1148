package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/reddit-companion/backend/internal/config"
	"github.com/emilythestrangee/reddit-companion/backend/internal/database"
	"github.com/emilythestrangee/reddit-companion/backend/internal/handlers"
	"github.com/emilythestrangee/reddit-companion/backend/internal/inbox"
	"github.com/emilythestrangee/reddit-companion/backend/internal/logging"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
	"github.com/emilythestrangee/reddit-companion/backend/internal/notify"
	"github.com/emilythestrangee/reddit-companion/backend/internal/reddit"
	"github.com/emilythestrangee/reddit-companion/backend/internal/session"
	"github.com/emilythestrangee/reddit-companion/backend/internal/store"
	"github.com/emilythestrangee/reddit-companion/backend/internal/testutil"
	"github.com/emilythestrangee/reddit-companion/backend/internal/thirdparty"
)

const postJSON = `[
 {"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"abc","name":"t3_abc","subreddit":"golang","title":"Clip","url":"https://gfycat.com/Clip","permalink":"/r/golang/comments/abc/clip/","created_utc":1700000000}}]}},
 {"kind":"Listing","data":{"children":[
  {"kind":"t1","data":{"id":"c1","name":"t1_c1","parent_id":"t3_abc","author":"bob","body":"first","depth":0,
   "replies":{"kind":"Listing","data":{"children":[{"kind":"t1","data":{"id":"c2","name":"t1_c2","parent_id":"t1_c1","author":"alice","body":"second","depth":1,"replies":""}}]}}}},
  {"kind":"more","data":{"count":10}}
 ]}}
]`

const crosspostJSON = `[
 {"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"xp","name":"t3_xp","subreddit":"golang","title":"Shared",
   "url":"/r/gifs/comments/orig/clip/","permalink":"/r/golang/comments/xp/shared/","crosspost_parent":"t3_orig",
   "crosspost_parent_list":[{"id":"orig","name":"t3_orig","subreddit":"gifs","title":"Clip","url":"https://gfycat.com/Clip"}]}}]}},
 {"kind":"Listing","data":{"children":[]}}
]`

const listingJSON = `{"kind":"Listing","data":{"after":"t3_self","children":[
 {"kind":"t3","data":{"id":"abc","name":"t3_abc","title":"Clip","url":"https://gfycat.com/Clip"}},
 {"kind":"t3","data":{"id":"pic","name":"t3_pic","title":"Pic","url":"https://i.imgur.com/Pic01.png"}},
 {"kind":"t3","data":{"id":"self","name":"t3_self","title":"Question","url":"https://www.reddit.com/r/golang/comments/self/q/","is_self":true}}
]}}`

// fakeReddit serves canned API responses and counts hits per path.
type fakeReddit struct {
	mu    sync.Mutex
	hits  map[string]int
	forms map[string]url.Values
}

func (f *fakeReddit) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeReddit) form(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[path]
}

func (f *fakeReddit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	f.mu.Lock()
	f.hits[r.URL.Path]++
	f.forms[r.URL.Path] = r.PostForm
	f.mu.Unlock()

	switch r.URL.Path {
	case "/api/v1/access_token":
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"refreshed","token_type":"bearer","expires_in":3600}`))
	case "/comments/abc":
		w.Write([]byte(postJSON))
	case "/comments/xp":
		w.Write([]byte(crosspostJSON))
	case "/r/golang/hot":
		w.Write([]byte(listingJSON))
	case "/r/golang/about":
		w.Write([]byte(`{"kind":"t5","data":{"display_name":"golang","name":"t5_2rc7j","title":"Go","subscribers":100}}`))
	case "/r/golang/about/rules":
		w.Write([]byte(`{"rules":[{"short_name":"Be nice","kind":"all","priority":0}]}`))
	case "/r/golang/api/link_flair_v2":
		w.Write([]byte(`[{"id":"f1","text":"Help"}]`))
	case "/user/alice/about":
		w.Write([]byte(`{"kind":"t2","data":{"name":"alice","id":"xyz","link_karma":10,"comment_karma":5}}`))
	case "/message/inbox", "/message/unread":
		w.Write([]byte(`{"kind":"Listing","data":{"children":[{"kind":"t1","data":{"name":"t1_m1","author":"bob","subreddit":"golang","subject":"comment reply","body":"hi","new":true,"created_utc":1700000000,"context":"/r/golang/comments/abc/clip/m1/?context=3"}}]}}`))
	case "/api/read_message", "/api/vote":
		w.Write([]byte(`{}`))
	case "/subreddits/mine/subscriber":
		if r.URL.Query().Get("after") == "" {
			w.Write([]byte(`{"data":{"after":"t5_b","children":[{"kind":"t5","data":{"display_name":"golang","name":"t5_a"}}]}}`))
			return
		}
		w.Write([]byte(`{"data":{"after":null,"children":[{"kind":"t5","data":{"display_name":"rust","name":"t5_b"}}]}}`))
	case "/r/broken/about":
		w.WriteHeader(http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type env struct {
	router *gin.Engine
	reddit *fakeReddit
	store  *store.Store
}

func newEnv(t *testing.T) *env {
	gin.SetMode(gin.TestMode)
	log := logging.Discard()

	fake := &fakeReddit{hits: map[string]int{}, forms: map[string]url.Values{}}
	redditSrv := httptest.NewServer(fake)
	t.Cleanup(redditSrv.Close)

	mediaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/gfycats/clip" {
			w.Write([]byte(`{"gfyItem":{"mp4Url":"https://giant.gfycat.com/Clip.mp4"}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(mediaSrv.Close)

	db := testutil.NewDB(t)
	st := store.New(db)
	client := reddit.New(reddit.Config{BaseURL: redditSrv.URL, UserAgent: "test", RequestsPerMinute: 6000}, log)
	tokens := session.NewTokens(reddit.NewAuthenticator(reddit.AuthConfig{
		ClientID: "id", ClientSecret: "secret", TokenURL: redditSrv.URL + "/api/v1/access_token",
	}), st)
	resolver := thirdparty.NewResolver(
		thirdparty.NewImgurClient(mediaSrv.URL, "cid", nil),
		thirdparty.NewGifHostClient(thirdparty.GfycatConfig(mediaSrv.URL), nil),
		thirdparty.NewGifHostClient(thirdparty.RedgifsConfig(mediaSrv.URL), nil),
		thirdparty.NewLRUCache(16, time.Minute),
		log,
	)
	poller := inbox.NewPoller(client, tokens, st, notify.NewStoreNotifier(st), config.Poller{FullRefreshEvery: 5, Limit: 25, Concurrency: 1}, log)

	secret := []byte("test-secret")
	h := handlers.NewHandler(handlers.Deps{
		Store:     st,
		Reddit:    client,
		Tokens:    tokens,
		Resolver:  resolver,
		Poller:    poller,
		JWTSecret: secret,
		CacheTTL:  time.Minute,
		Log:       log,
	})
	srv := New(database.Wrap(db, log), h, secret, log)
	return &env{router: srv.RegisterRoutes(), reddit: fake, store: st}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// register creates an account and returns its session token.
func (e *env) register(t *testing.T, username, accessToken string) string {
	w := e.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username":      username,
		"password":      "hunter22",
		"refresh_token": "refresh-" + username,
		"access_token":  accessToken,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct{ Token string }](t, w).Token
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "up", decode[map[string]string](t, w)["status"])

	w = e.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "companion_http_requests_total")
}

func TestRegisterLoginAndSettings(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "spez", "live-token")

	w := e.do(t, http.MethodPost, "/api/register", "", map[string]string{"username": "spez", "password": "hunter22", "refresh_token": "r"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/register", "", map[string]string{"username": "short", "password": "123", "refresh_token": "r"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": "spez", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": "spez", "password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[struct{ Token string }](t, w).Token)

	w = e.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, "spez", me["username"])
	assert.Equal(t, true, me["notifications_enabled"])
	assert.NotContains(t, me, "password")

	w = e.do(t, http.MethodPut, "/api/me", token, map[string]any{"phone": "+15550001111", "notifications_enabled": false})
	require.Equal(t, http.StatusOK, w.Code)
	acct, err := e.store.AccountByUsername(context.Background(), "spez")
	require.NoError(t, err)
	assert.Equal(t, "+15550001111", acct.Phone)
	assert.False(t, acct.NotificationsEnabled)

	w = e.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetPostIsCacheThrough(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "spez", "live-token")

	w := e.do(t, http.MethodGet, "/api/posts/abc", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[models.PostWithComments](t, w)
	assert.Equal(t, "Clip", out.Post.Title)
	require.NotNil(t, out.Post.Media)
	assert.Equal(t, "https://giant.gfycat.com/Clip.mp4", out.Post.Media.URL)
	require.Len(t, out.Comments, 2)
	assert.Equal(t, "c2", out.Comments[1].ID)

	w = e.do(t, http.MethodGet, "/api/posts/abc", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cached := decode[models.PostWithComments](t, w)
	assert.Equal(t, "https://giant.gfycat.com/Clip.mp4", cached.Post.Media.URL)
	assert.Len(t, cached.Comments, 2)
	assert.Equal(t, 1, e.reddit.count("/comments/abc"))

	w = e.do(t, http.MethodGet, "/api/posts/abc/comments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Comment](t, w), 2)
	assert.Equal(t, 1, e.reddit.count("/comments/abc"))

	w = e.do(t, http.MethodGet, "/api/posts/abc?refresh=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, e.reddit.count("/comments/abc"))

	w = e.do(t, http.MethodGet, "/api/posts/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCachedCrosspostKeepsParents(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "spez", "live-token")

	w := e.do(t, http.MethodGet, "/api/posts/xp", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	fresh := decode[models.PostWithComments](t, w)
	require.Len(t, fresh.Post.Crossposts, 1)
	require.NotNil(t, fresh.Post.Crossposts[0].Media)
	assert.Equal(t, "https://giant.gfycat.com/Clip.mp4", fresh.Post.Crossposts[0].Media.URL)

	w = e.do(t, http.MethodGet, "/api/posts/xp", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cached := decode[models.PostWithComments](t, w)
	assert.Equal(t, 1, e.reddit.count("/comments/xp"))
	assert.Equal(t, fresh.Post.Media, cached.Post.Media)
	assert.Equal(t, fresh.Post.Crossposts, cached.Post.Crossposts)

	w = e.do(t, http.MethodPost, "/api/posts/xp/resolve", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stored, err := e.store.Post(context.Background(), "xp")
	require.NoError(t, err)
	require.Len(t, stored.Crossposts, 1)
	assert.Equal(t, "https://giant.gfycat.com/Clip.mp4", stored.Crossposts[0].Media.URL)
}

func TestSubredditPosts(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "spez", "live-token")

	w := e.do(t, http.MethodGet, "/api/r/golang/posts", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[reddit.PostPage](t, w)
	assert.Equal(t, "t3_self", page.After)
	require.Len(t, page.Posts, 3)
	require.NotNil(t, page.Posts[0].Media)
	assert.Equal(t, "https://giant.gfycat.com/Clip.mp4", page.Posts[0].Media.URL)
	require.NotNil(t, page.Posts[1].Media)
	assert.Equal(t, "https://i.imgur.com/Pic01.png", page.Posts[1].Media.URL)
	assert.Nil(t, page.Posts[2].Media)

	w = e.do(t, http.MethodGet, "/api/r/golang/posts?sort=best", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveEndpoints(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "spez", "live-token")

	w := e.do(t, http.MethodPost, "/api/posts/abc/resolve", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "https://giant.gfycat.com/Clip.mp4", decode[struct{ Media models.Media }](t, w).Media.URL)

	w = e.do(t, http.MethodPost, "/api/resolve", token, map[string]string{"url": "https://i.imgur.com/Vid01.gifv"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://i.imgur.com/Vid01.mp4", decode[struct{ Media models.Media }](t, w).Media.URL)

	w = e.do(t, http.MethodPost, "/api/resolve", token, map[string]string{"url": "https://example.com/page"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[map[string]any](t, w)["media"])

	w = e.do(t, http.MethodPost, "/api/resolve", token, map[string]string{"url": "https://imgur.com/a/Gone"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, "/api/resolve", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVote(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "spez", "live-token")

	w := e.do(t, http.MethodPost, "/api/posts/abc/vote", token, map[string]int{"dir": -1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "t3_abc", e.reddit.form("/api/vote").Get("id"))
	assert.Equal(t, "-1", e.reddit.form("/api/vote").Get("dir"))

	w = e.do(t, http.MethodPost, "/api/posts/abc/vote", token, map[string]int{"dir": 0})
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/posts/abc/vote", token, map[string]int{"dir": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubredditAndUserRoutes(t *testing.T) {
	e := newEnv(t)
	// no access token: the first reddit call refreshes it
	token := e.register(t, "spez", "")

	for i := 0; i < 2; i++ {
		w := e.do(t, http.MethodGet, "/api/r/golang", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 100, decode[models.Subreddit](t, w).Subscribers)

		w = e.do(t, http.MethodGet, "/api/r/golang/rules", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Be nice", decode[[]models.Rule](t, w)[0].ShortName)

		w = e.do(t, http.MethodGet, "/api/r/golang/flairs", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Help", decode[[]models.Flair](t, w)[0].Text)

		w = e.do(t, http.MethodGet, "/api/users/alice", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 10, decode[models.UserInfo](t, w).LinkKarma)
	}

	assert.Equal(t, 1, e.reddit.count("/r/golang/about"))
	assert.Equal(t, 1, e.reddit.count("/r/golang/about/rules"))
	assert.Equal(t, 1, e.reddit.count("/r/golang/api/link_flair_v2"))
	assert.Equal(t, 1, e.reddit.count("/user/alice/about"))
	assert.Equal(t, 1, e.reddit.count("/api/v1/access_token"))

	acct, err := e.store.AccountByUsername(context.Background(), "spez")
	require.NoError(t, err)
	assert.Equal(t, "refreshed", acct.AccessToken)

	w := e.do(t, http.MethodGet, "/api/r/broken", token, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	w = e.do(t, http.MethodGet, "/api/users/ghost", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInboxRoutes(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "spez", "live-token")

	w := e.do(t, http.MethodPost, "/api/inbox/poll", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[map[string]any](t, w)
	assert.Equal(t, true, report["full"])
	assert.EqualValues(t, 1, report["notified"])

	// a second poll finds nothing new
	w = e.do(t, http.MethodPost, "/api/inbox/poll", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["notified"])

	w = e.do(t, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	notes := decode[[]models.Notification](t, w)
	require.Len(t, notes, 1)
	assert.Equal(t, "Reply from u/bob in r/golang", notes[0].Title)

	w = e.do(t, http.MethodGet, "/api/inbox?unread=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Message](t, w), 1)

	w = e.do(t, http.MethodPost, "/api/inbox/read", token, map[string][]string{"names": {"t1_m1"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "t1_m1", e.reddit.form("/api/read_message").Get("id"))

	w = e.do(t, http.MethodGet, "/api/inbox?unread=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Message](t, w))

	w = e.do(t, http.MethodGet, "/api/inbox", token, nil)
	assert.Len(t, decode[[]models.Message](t, w), 1)

	w = e.do(t, http.MethodPost, "/api/inbox/read", token, map[string][]string{"names": {}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionSync(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "spez", "live-token")

	w := e.do(t, http.MethodGet, "/api/subscriptions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Subscription](t, w))

	w = e.do(t, http.MethodPost, "/api/subscriptions/sync", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	subs := decode[[]models.Subscription](t, w)
	require.Len(t, subs, 2)
	assert.Equal(t, "golang", subs[0].Name)
	assert.Equal(t, "rust", subs[1].Name)
	assert.Equal(t, 2, e.reddit.count("/subreddits/mine/subscriber"))

	w = e.do(t, http.MethodGet, "/api/subscriptions", token, nil)
	assert.Len(t, decode[[]models.Subscription](t, w), 2)
}
