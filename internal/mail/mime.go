// Package mail turns raw RFC 5322 messages into core.Message values for
// the triage pipeline.
package mail

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/llm-mail-triage/internal/core"
)

// ParseMessage reads one message from r and converts it into a
// core.Message. Messages without a Message-Id header get a generated
// id so the vector index always has a key.
func ParseMessage(r io.Reader) (*core.Message, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, err
	}

	id := strings.Trim(msg.Header.Get("Message-Id"), "<>")
	if id == "" {
		id = uuid.NewString()
	}

	senderEmail := msg.Header.Get("From")
	senderName := ""
	if addr, err := mail.ParseAddress(senderEmail); err == nil {
		senderEmail = addr.Address
		senderName = addr.Name
	}

	receivedAt := time.Now()
	if date, err := msg.Header.Date(); err == nil {
		receivedAt = date
	}

	body, html, err := extractBodies(msg)
	if err != nil {
		return nil, err
	}

	return &core.Message{
		ID:          id,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		Subject:     msg.Header.Get("Subject"),
		BodyText:    body,
		BodyHTML:    html,
		ReceivedAt:  receivedAt,
	}, nil
}

// extractBodies splits a message into its plain-text and HTML content.
// For multipart messages the text/plain and text/html parts are
// collected separately.
func extractBodies(msg *mail.Message) (string, string, error) {
	contentType := msg.Header.Get("Content-Type")

	// If it's not a multipart message, just return the body
	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", "", err
		}
		if strings.Contains(strings.ToLower(contentType), "text/html") {
			return "", string(bodyBytes), nil
		}
		return string(bodyBytes), "", nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", "", err
		}
		return string(bodyBytes), "", nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", "", err
		}
		return string(bodyBytes), "", nil
	}

	mr := multipart.NewReader(msg.Body, boundary)

	var textContent, htmlContent bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return whatever was collected before the bad part
			break
		}

		partContentType := strings.ToLower(part.Header.Get("Content-Type"))
		switch {
		case strings.Contains(partContentType, "text/plain"):
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			textContent.Write(partBytes)
			textContent.WriteString("\n")
		case strings.Contains(partContentType, "text/html"):
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			htmlContent.Write(partBytes)
			htmlContent.WriteString("\n")
		}
		// Nested multipart parts and attachments are skipped
	}

	return textContent.String(), htmlContent.String(), nil
}
