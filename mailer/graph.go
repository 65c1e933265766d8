package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultLoginBaseURL = "https://login.microsoftonline.com"
	defaultGraphBaseURL = "https://graph.microsoft.com"
	graphScope          = "https://graph.microsoft.com/.default"

	// Outbound calls get a bounded wait; past it the send counts as a
	// delivery failure.
	requestTimeout = 30 * time.Second

	// Refresh slightly before the token's stated lifetime ends.
	tokenExpirySlack = 60 * time.Second
)

// GraphMailer submits mail through the Microsoft Graph sendMail API,
// authenticating with an OAuth2 client-credentials exchange. The bearer token
// is cached for its stated lifetime; concurrent refreshes at the expiry edge
// may briefly acquire duplicate tokens, which the provider tolerates.
type GraphMailer struct {
	client       *resty.Client
	tenantID     string
	clientID     string
	clientSecret string
	sender       string

	loginBaseURL string
	graphBaseURL string

	token atomic.Pointer[cachedToken]
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

func NewGraphMailer(tenantID, clientID, clientSecret, sender string) *GraphMailer {
	return &GraphMailer{
		client:       resty.New().SetTimeout(requestTimeout),
		tenantID:     tenantID,
		clientID:     clientID,
		clientSecret: clientSecret,
		sender:       sender,
		loginBaseURL: defaultLoginBaseURL,
		graphBaseURL: defaultGraphBaseURL,
	}
}

type graphEmailAddress struct {
	Address string `json:"address"`
}

type graphRecipient struct {
	EmailAddress graphEmailAddress `json:"emailAddress"`
}

type graphItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}

type graphMessage struct {
	Subject      string            `json:"subject"`
	Body         graphItemBody     `json:"body"`
	ToRecipients []graphRecipient  `json:"toRecipients"`
	Attachments  []graphAttachment `json:"attachments"`
}

type graphSendRequest struct {
	Message         graphMessage `json:"message"`
	SaveToSentItems bool         `json:"saveToSentItems"`
}

// Send posts the message to /users/<sender>/sendMail. A non-success response
// is a DeliveryError carrying the provider's status and body.
func (m *GraphMailer) Send(ctx context.Context, msg Message) error {
	token, err := m.accessToken(ctx)
	if err != nil {
		return err
	}

	payload := graphSendRequest{
		Message: graphMessage{
			Subject: msg.Subject,
			Body:    graphItemBody{ContentType: "Text", Content: msg.Body},
			ToRecipients: []graphRecipient{
				{EmailAddress: graphEmailAddress{Address: msg.To}},
			},
			Attachments: []graphAttachment{
				{
					ODataType:    "#microsoft.graph.fileAttachment",
					Name:         msg.AttachmentName,
					ContentType:  msg.AttachmentType,
					ContentBytes: base64.StdEncoding.EncodeToString(msg.Attachment),
				},
			},
		},
		SaveToSentItems: true,
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		Post(fmt.Sprintf("%s/v1.0/users/%s/sendMail", m.graphBaseURL, m.sender))
	if err != nil {
		return &DeliveryError{Provider: "graph", Detail: err.Error(), Err: err}
	}
	if resp.StatusCode() >= http.StatusMultipleChoices {
		return &DeliveryError{Provider: "graph", StatusCode: resp.StatusCode(), Detail: resp.String()}
	}
	return nil
}

// accessToken returns the cached bearer token, acquiring a fresh one via the
// client-credentials exchange when absent or expired.
func (m *GraphMailer) accessToken(ctx context.Context) (string, error) {
	if tok := m.token.Load(); tok != nil && time.Now().Before(tok.expiresAt) {
		return tok.value, nil
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     m.clientID,
			"client_secret": m.clientSecret,
			"scope":         graphScope,
			"grant_type":    "client_credentials",
		}).
		SetResult(&body).
		Post(fmt.Sprintf("%s/%s/oauth2/v2.0/token", m.loginBaseURL, m.tenantID))
	if err != nil {
		return "", &ConfigError{Reason: "token request failed", Err: err}
	}
	if resp.StatusCode() != http.StatusOK || body.AccessToken == "" {
		return "", &ConfigError{Reason: fmt.Sprintf("token endpoint returned %d: %s", resp.StatusCode(), resp.String())}
	}

	expiresAt := time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - tokenExpirySlack)
	m.token.Store(&cachedToken{value: body.AccessToken, expiresAt: expiresAt})
	return body.AccessToken, nil
}
