package mail

import (
	"strings"
	"testing"
)

const plainMessage = `From: Alice Example <alice@example.com>
To: bob@example.com
Subject: lunch
Message-Id: <abc123@example.com>
Date: Mon, 02 Jan 2006 15:04:05 -0700

Want to grab lunch today?
`

const multipartMessage = `From: alice@example.com
Subject: report
Content-Type: multipart/alternative; boundary="BOUNDARY"

--BOUNDARY
Content-Type: text/plain; charset=utf-8

The plain text part.
--BOUNDARY
Content-Type: text/html; charset=utf-8

<p>The HTML part.</p>
--BOUNDARY--
`

func TestParseMessagePlain(t *testing.T) {
	msg, err := ParseMessage(strings.NewReader(plainMessage))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}

	if msg.ID != "abc123@example.com" {
		t.Errorf("id = %q", msg.ID)
	}
	if msg.SenderEmail != "alice@example.com" {
		t.Errorf("sender = %q", msg.SenderEmail)
	}
	if msg.SenderName != "Alice Example" {
		t.Errorf("sender name = %q", msg.SenderName)
	}
	if msg.Subject != "lunch" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.BodyText, "grab lunch") {
		t.Errorf("body = %q", msg.BodyText)
	}
	if msg.ReceivedAt.Year() != 2006 {
		t.Errorf("received at = %v", msg.ReceivedAt)
	}
}

func TestParseMessageGeneratesMissingID(t *testing.T) {
	raw := "From: a@b.com\nSubject: hi\n\nbody\n"
	msg, err := ParseMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if msg.ID == "" {
		t.Error("expected a generated message id")
	}
}

func TestParseMessageMultipart(t *testing.T) {
	msg, err := ParseMessage(strings.NewReader(multipartMessage))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}

	if !strings.Contains(msg.BodyText, "The plain text part.") {
		t.Errorf("body missing text/plain part: %q", msg.BodyText)
	}
	if strings.Contains(msg.BodyText, "<p>") {
		t.Errorf("body should not include the HTML part: %q", msg.BodyText)
	}
	if !strings.Contains(msg.BodyHTML, "<p>The HTML part.</p>") {
		t.Errorf("html body missing text/html part: %q", msg.BodyHTML)
	}
}

func TestParseMessageMalformedHeader(t *testing.T) {
	if _, err := ParseMessage(strings.NewReader("not a mail message")); err == nil {
		t.Error("expected error for malformed input")
	}
}
