package quickbooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html"
)

// maxErrorBody bounds how much of an error response is read and kept.
const maxErrorBody = 64 << 10

// maxRawMessage bounds unstructured bodies copied into a Fault message.
const maxRawMessage = 512

// FaultError is one entry of a QuickBooks Fault.
type FaultError struct {
	Message string `json:"Message"`
	Detail  string `json:"Detail"`
	Code    string `json:"code"`
	Element string `json:"element,omitempty"`
}

// Fault is the error body QuickBooks returns, either as JSON or as IntuitResponse XML.
type Fault struct {
	Type   string       `json:"type"`
	Errors []FaultError `json:"Error"`
}

func (f *Fault) summary() string {
	if f == nil {
		return ""
	}
	msgs := make([]string, 0, len(f.Errors))
	for _, e := range f.Errors {
		msg := e.Message
		if e.Detail != "" {
			msg += " (" + e.Detail + ")"
		}
		if e.Code != "" {
			msg += " [code " + e.Code + "]"
		}
		msgs = append(msgs, msg)
	}
	return strings.Join(msgs, "; ")
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Method     string
	URL        string
	// Fault is nil when the body could not be interpreted.
	Fault *Fault
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d (%s)", e.Method, e.URL, e.StatusCode, e.Reason())
	if summary := e.Fault.summary(); summary != "" {
		msg += ": " + summary
	}
	return msg
}

// Reason returns the canonical reason phrase of the status code.
func (e *StatusError) Reason() string {
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return "unknown"
}

// Unauthorized reports whether the API rejected the access token.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// TransportError means no HTTP response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport error: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newStatusError(resp *http.Response) *StatusError {
	statusErr := &StatusError{
		StatusCode: resp.StatusCode,
		Method:     resp.Request.Method,
		URL:        resp.Request.URL.Redacted(),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		return statusErr
	}

	statusErr.Fault = parseFault(resp.Header.Get("Content-Type"), body)
	return statusErr
}

// parseFault interprets an error body based on its content type.
func parseFault(contentType string, body []byte) *Fault {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	switch mediaType {
	case "application/json":
		if fault := parseJSONFault(body); fault != nil {
			return fault
		}
	case "application/xml", "text/xml":
		if fault := parseXMLFault(body); fault != nil {
			return fault
		}
	case "text/html":
		if msg := parseHTMLMessage(body); msg != "" {
			return &Fault{Errors: []FaultError{{Message: msg}}}
		}
	}

	return rawFault(body)
}

// parseJSONFault accepts both "Fault"/"Error" and the lowercase variant the auth gateway sends.
func parseJSONFault(body []byte) *Fault {
	var envelope struct {
		Fault *Fault `json:"Fault"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Fault == nil || len(envelope.Fault.Errors) == 0 {
		return nil
	}
	return envelope.Fault
}

// parseXMLFault extracts IntuitResponse/Fault/Error elements.
func parseXMLFault(body []byte) *Fault {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	fault := &Fault{}
	var traverse func(*xmlquery.Node)
	traverse = func(n *xmlquery.Node) {
		if n.Type == xmlquery.ElementNode {
			switch n.Data {
			case "Fault":
				fault.Type = n.SelectAttr("type")
			case "Error":
				fault.Errors = append(fault.Errors, FaultError{
					Message: childText(n, "Message"),
					Detail:  childText(n, "Detail"),
					Code:    n.SelectAttr("code"),
					Element: n.SelectAttr("element"),
				})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	if len(fault.Errors) == 0 {
		return nil
	}
	return fault
}

func childText(n *xmlquery.Node, name string) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == name {
			return strings.TrimSpace(c.InnerText())
		}
	}
	return ""
}

// parseHTMLMessage concatenates the text of <title> and <p> elements of gateway error pages.
func parseHTMLMessage(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var messages []string
	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "p" || n.Data == "title") {
			if text := strings.Join(strings.Fields(nodeText(n)), " "); text != "" {
				messages = append(messages, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}
	parse(doc)

	return strings.Join(messages, "; ")
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
		sb.WriteString(" ")
	}
	return sb.String()
}

func rawFault(body []byte) *Fault {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxRawMessage {
		msg = msg[:maxRawMessage] + "..."
	}
	return &Fault{Errors: []FaultError{{Message: msg}}}
}
