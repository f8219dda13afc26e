package view

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "flash"

// Message is a one-shot notice shown to the user on the next rendered page.
type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Notice builds a message in the default category.
func Notice(text string) Message {
	return Message{Category: "notice", Text: text}
}

// Flash carries one-shot notices across a redirect in a cookie. Add is
// fire-and-forget; Pop consumes whatever the previous request left behind.
type Flash struct{}

// NewFlash creates a Flash.
func NewFlash() *Flash {
	return &Flash{}
}

// Add appends a notice for the next rendered page.
func (f *Flash) Add(w http.ResponseWriter, r *http.Request, category, text string) {
	msgs := append(f.peek(r), Message{Category: category, Text: text})
	b, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(b),
		Path:     "/",
		HttpOnly: true,
	})
}

// Pop returns the pending notices and expires the carrying cookie.
func (f *Flash) Pop(w http.ResponseWriter, r *http.Request) []Message {
	msgs := f.peek(r)
	if len(msgs) > 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
	return msgs
}

func (f *Flash) peek(r *http.Request) []Message {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	b, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil
	}
	return msgs
}
