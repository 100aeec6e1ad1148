package reddit

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

const webBaseURL = "https://www.reddit.com"

// parseMessages reads an inbox listing. Private-message threads nest their
// replies; those are flattened into the result.
func parseMessages(children gjson.Result) []models.Message {
	var out []models.Message
	children.ForEach(func(_, child gjson.Result) bool {
		kind := child.Get("kind").String()
		if kind != models.KindComment && kind != models.KindMessage {
			return true
		}
		d := child.Get("data")
		out = append(out, models.Message{
			Name:       d.Get("name").String(),
			Kind:       kind,
			Author:     d.Get("author").String(),
			Dest:       d.Get("dest").String(),
			Subject:    d.Get("subject").String(),
			Body:       d.Get("body").String(),
			Subreddit:  d.Get("subreddit").String(),
			LinkTitle:  d.Get("link_title").String(),
			Context:    d.Get("context").String(),
			ParentID:   d.Get("parent_id").String(),
			WasComment: d.Get("was_comment").Bool(),
			New:        d.Get("new").Bool(),
			CreatedUTC: unixTime(d.Get("created_utc").Float()),
		})
		out = append(out, parseMessages(d.Get("replies.data.children"))...)
		return true
	})
	return out
}

func parsePost(d gjson.Result) models.Post {
	permalink := d.Get("permalink").String()
	if strings.HasPrefix(permalink, "/") {
		permalink = webBaseURL + permalink
	}

	post := models.Post{
		ID:              d.Get("id").String(),
		FullName:        d.Get("name").String(),
		Subreddit:       d.Get("subreddit").String(),
		Author:          d.Get("author").String(),
		Title:           d.Get("title").String(),
		SelfText:        d.Get("selftext").String(),
		URL:             firstNonEmpty(d.Get("url_overridden_by_dest").String(), d.Get("url").String()),
		Permalink:       permalink,
		Domain:          d.Get("domain").String(),
		PostHint:        d.Get("post_hint").String(),
		Thumbnail:       httpURL(d.Get("thumbnail").String()),
		PreviewURL:      d.Get("preview.images.0.source.url").String(),
		RedditVideoURL:  firstNonEmpty(d.Get("media.reddit_video.fallback_url").String(), d.Get("secure_media.reddit_video.fallback_url").String()),
		FlairText:       d.Get("link_flair_text").String(),
		IsSelf:          d.Get("is_self").Bool(),
		IsVideo:         d.Get("is_video").Bool(),
		IsGallery:       d.Get("is_gallery").Bool(),
		Over18:          d.Get("over_18").Bool(),
		Spoiler:         d.Get("spoiler").Bool(),
		Score:           int(d.Get("score").Int()),
		UpvoteRatio:     d.Get("upvote_ratio").Float(),
		NumComments:     int(d.Get("num_comments").Int()),
		CrosspostParent: d.Get("crosspost_parent").String(),
		CreatedUTC:      unixTime(d.Get("created_utc").Float()),
	}

	d.Get("crosspost_parent_list").ForEach(func(_, parent gjson.Result) bool {
		post.Crossposts = append(post.Crossposts, parsePost(parent))
		return true
	})
	return post
}

// flattenComments walks a comment tree depth first; "more" stubs are skipped.
func flattenComments(children gjson.Result, out []models.Comment) []models.Comment {
	children.ForEach(func(_, child gjson.Result) bool {
		if child.Get("kind").String() != models.KindComment {
			return true
		}
		d := child.Get("data")
		out = append(out, models.Comment{
			ID:            d.Get("id").String(),
			FullName:      d.Get("name").String(),
			ParentID:      d.Get("parent_id").String(),
			Author:        d.Get("author").String(),
			Body:          d.Get("body").String(),
			Score:         int(d.Get("score").Int()),
			Depth:         int(d.Get("depth").Int()),
			IsSubmitter:   d.Get("is_submitter").Bool(),
			Distinguished: d.Get("distinguished").String(),
			CreatedUTC:    unixTime(d.Get("created_utc").Float()),
		})
		out = flattenComments(d.Get("replies.data.children"), out)
		return true
	})
	return out
}

func parseSubreddit(d gjson.Result) models.Subreddit {
	return models.Subreddit{
		Name:              d.Get("display_name").String(),
		FullName:          d.Get("name").String(),
		Title:             d.Get("title").String(),
		PublicDescription: d.Get("public_description").String(),
		Description:       d.Get("description").String(),
		IconURL:           firstNonEmpty(cleanIcon(d.Get("community_icon").String()), cleanIcon(d.Get("icon_img").String())),
		BannerURL:         firstNonEmpty(cleanIcon(d.Get("banner_background_image").String()), cleanIcon(d.Get("banner_img").String())),
		Subscribers:       int(d.Get("subscribers").Int()),
		ActiveUsers:       int(d.Get("active_user_count").Int()),
		Over18:            d.Get("over18").Bool(),
		CreatedUTC:        unixTime(d.Get("created_utc").Float()),
	}
}

func parseRules(body []byte) []models.Rule {
	rules := []models.Rule{}
	gjson.GetBytes(body, "rules").ForEach(func(_, r gjson.Result) bool {
		rules = append(rules, models.Rule{
			ShortName:       r.Get("short_name").String(),
			Description:     r.Get("description").String(),
			Kind:            r.Get("kind").String(),
			ViolationReason: r.Get("violation_reason").String(),
			Priority:        int(r.Get("priority").Int()),
		})
		return true
	})
	return rules
}

func parseFlairs(body []byte) []models.Flair {
	flairs := []models.Flair{}
	gjson.ParseBytes(body).ForEach(func(_, f gjson.Result) bool {
		flairs = append(flairs, models.Flair{
			ID:              f.Get("id").String(),
			Text:            f.Get("text").String(),
			TextEditable:    f.Get("text_editable").Bool(),
			BackgroundColor: f.Get("background_color").String(),
			TextColor:       f.Get("text_color").String(),
			ModOnly:         f.Get("mod_only").Bool(),
		})
		return true
	})
	return flairs
}

func parseUser(d gjson.Result) models.UserInfo {
	return models.UserInfo{
		Name:         d.Get("name").String(),
		FullName:     "t2_" + d.Get("id").String(),
		IconURL:      cleanIcon(d.Get("icon_img").String()),
		BannerURL:    cleanIcon(d.Get("subreddit.banner_img").String()),
		Description:  d.Get("subreddit.public_description").String(),
		LinkKarma:    int(d.Get("link_karma").Int()),
		CommentKarma: int(d.Get("comment_karma").Int()),
		TotalKarma:   int(d.Get("total_karma").Int()),
		IsGold:       d.Get("is_gold").Bool(),
		IsMod:        d.Get("is_mod").Bool(),
		Verified:     d.Get("verified").Bool(),
		CreatedUTC:   unixTime(d.Get("created_utc").Float()),
	}
}

func parseSubscriptions(children gjson.Result) []models.Subscription {
	subs := []models.Subscription{}
	children.ForEach(func(_, child gjson.Result) bool {
		d := child.Get("data")
		subs = append(subs, models.Subscription{
			Name:     d.Get("display_name").String(),
			FullName: d.Get("name").String(),
			IconURL:  firstNonEmpty(cleanIcon(d.Get("community_icon").String()), cleanIcon(d.Get("icon_img").String())),
			Over18:   d.Get("over18").Bool(),
		})
		return true
	})
	return subs
}
