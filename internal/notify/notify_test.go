package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderwatch/pkg/models"
)

func sampleTender() models.Tender {
	return models.Tender{
		Title:           "Widget Supply Contract",
		Category:        "IT Hardware",
		DepartmentOwner: "Ministry of Works",
		ClosingDate:     "30-11-2024",
		Number:          "TSE-2024-001",
		DocumentLinks: []string{
			"https://example.com/a.pdf",
			"https://example.com/b.pdf",
			"https://example.com/c.pdf",
			"https://example.com/d.pdf",
		},
	}
}

func TestRenderAlert(t *testing.T) {
	body := RenderAlert(sampleTender())

	assert.Contains(t, body, "*Title:* Widget Supply Contract")
	assert.Contains(t, body, "*Tender No:* TSE-2024-001")
	assert.Contains(t, body, "*Category:* IT Hardware")
	assert.Contains(t, body, "*Department:* Ministry of Works")
	assert.Contains(t, body, "*Closing Date:* 30-11-2024")
	assert.Contains(t, body, "*Documents:* 4 available")
	assert.Contains(t, body, "1. https://example.com/a.pdf")
	assert.NotContains(t, body, "d.pdf", "only the first three links are rendered")
}

func TestRenderAlert_OmitsEmptyFields(t *testing.T) {
	body := RenderAlert(models.Tender{Title: "Bare Tender"})

	assert.Contains(t, body, "Bare Tender")
	assert.NotContains(t, body, "Category")
	assert.NotContains(t, body, "Department")
	assert.NotContains(t, body, "Documents")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "New Tender Alert: Widget Supply Contract", Subject(sampleTender()))
	assert.Equal(t, "New Tender Alert", Subject(models.Tender{}))
}

func TestNewWhatsApp_RequiresCredentials(t *testing.T) {
	_, err := NewWhatsApp(WhatsAppConfig{AuthToken: "tok", From: "+10000"})
	assert.Error(t, err, "missing account SID")

	_, err = NewWhatsApp(WhatsAppConfig{AccountSID: "AC123", From: "+10000"})
	assert.Error(t, err, "missing auth token")
}

func TestWhatsApp_Send(t *testing.T) {
	var gotForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"From": r.PostFormValue("From"),
			"To":   r.PostFormValue("To"),
			"Body": r.PostFormValue("Body"),
		}

		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM0001","status":"queued"}`))
	}))
	defer server.Close()

	wa, err := NewWhatsApp(WhatsAppConfig{
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "+14155238886",
		BaseURL:    server.URL,
	})
	require.NoError(t, err)

	out := wa.Send(context.Background(), "+921234567890", sampleTender())

	assert.True(t, out.OK, "Err: %s", out.Err)
	assert.Equal(t, "SM0001", out.ProviderID)
	assert.Equal(t, "whatsapp:+14155238886", gotForm["From"], "whatsapp: prefix is added")
	assert.Equal(t, "whatsapp:+921234567890", gotForm["To"])
	assert.True(t, strings.Contains(gotForm["Body"], "Widget Supply Contract"))
}

func TestWhatsApp_SendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":21211,"message":"The 'To' number is not valid."}`))
	}))
	defer server.Close()

	wa, err := NewWhatsApp(WhatsAppConfig{
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "whatsapp:+14155238886",
		BaseURL:    server.URL,
	})
	require.NoError(t, err)

	out := wa.Send(context.Background(), "bogus", sampleTender())

	assert.False(t, out.OK)
	assert.Contains(t, out.Err, "21211")
}

func TestNewEmail_RequiresSettings(t *testing.T) {
	_, err := NewEmail(EmailConfig{From: "a@b.c", Password: "pw"})
	assert.Error(t, err, "missing host")

	_, err = NewEmail(EmailConfig{Host: "smtp.example.com", Password: "pw"})
	assert.Error(t, err, "missing sender")
}

func TestNewEmail_DefaultPort(t *testing.T) {
	e, err := NewEmail(EmailConfig{Host: "smtp.example.com", From: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, 587, e.cfg.Port)
}
