package order

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// RejectedError is a processor-level rejection: the command reached the
// processor and was refused. Code and Message are surfaced verbatim from
// the error envelope.
type RejectedError struct {
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("command rejected: %s", e.Message)
	}
	return fmt.Sprintf("command rejected: %s (code %s)", e.Message, e.Code)
}

// TransportError is a delivery failure: timeout, connection error, or a
// response without a parseable envelope. The command may or may not have
// reached the processor.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %s", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type errorEnvelope struct {
	XMLName xml.Name `xml:"error"`
	Serial  string   `xml:"serial-number,attr"`
	Code    string   `xml:"error-code"`
	Message string   `xml:"error-message"`
}

// parseResponse maps the processor's response envelope onto the error
// taxonomy. An error envelope wins over the HTTP status, since the
// processor reports rejections on 2xx responses as well.
func parseResponse(status int, body []byte) error {
	switch rootName(body) {
	case "request-received":
		return nil
	case "error":
		var envelope errorEnvelope
		if err := xml.Unmarshal(body, &envelope); err != nil {
			return &TransportError{Err: fmt.Errorf("undecodable error envelope: %w", err)}
		}
		return &RejectedError{Code: envelope.Code, Message: envelope.Message}
	}
	if status < 200 || status > 299 {
		return &TransportError{Err: fmt.Errorf("unexpected status %d without envelope", status)}
	}
	return &TransportError{Err: fmt.Errorf("unexpected response envelope")}
}

func rootName(body []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	for {
		token, err := decoder.Token()
		if err != nil {
			return ""
		}
		if start, ok := token.(xml.StartElement); ok {
			return start.Name.Local
		}
	}
}
