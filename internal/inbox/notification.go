package inbox

import (
	"fmt"
	"strings"

	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

const (
	webBaseURL   = "https://www.reddit.com"
	maxBodyRunes = 280
)

// BuildNotification turns an inbox message into a notification for acct.
func BuildNotification(acct *models.Account, msg models.Message) models.Notification {
	n := models.Notification{
		AccountName: acct.Username,
		MessageName: msg.Name,
		Kind:        msg.Kind,
		Body:        truncate(msg.Body, maxBodyRunes),
		Phone:       acct.Phone,
	}

	switch {
	case msg.Kind == models.KindComment && msg.Subject == "username mention":
		n.Title = fmt.Sprintf("u/%s mentioned you in r/%s", msg.Author, msg.Subreddit)
	case msg.Kind == models.KindComment:
		n.Title = fmt.Sprintf("Reply from u/%s in r/%s", msg.Author, msg.Subreddit)
	case msg.Author == "":
		n.Title = msg.Subject
	default:
		n.Title = fmt.Sprintf("Message from u/%s: %s", msg.Author, msg.Subject)
	}

	switch {
	case msg.Context != "":
		n.Link = webBaseURL + msg.Context
	case msg.Kind == models.KindMessage:
		n.Link = webBaseURL + "/message/messages/" + strings.TrimPrefix(msg.Name, models.KindMessage+"_")
	default:
		n.Link = webBaseURL + "/message/inbox"
	}
	return n
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
