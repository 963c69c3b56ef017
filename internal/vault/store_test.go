package vault

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	certs := []Certificate{
		NewCertificate("u/1_a.pdf", 1, "", base),
		NewCertificate("u/3_c.pdf", 3, "", base.Add(2*time.Hour)),
		NewCertificate("u/2_b.pdf", 2, "", base.Add(time.Hour)),
		NewCertificate("u/4_d.pdf", 4, "", base.Add(time.Hour)),
	}

	got := SortNewestFirst(certs)

	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.StoredName)
	}
	assert.Equal(t, []string{"3_c.pdf", "4_d.pdf", "2_b.pdf", "1_a.pdf"}, names)
}

func TestSortNewestFirst_CapsAtLimit(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var certs []Certificate
	for i := 0; i < ListLimit+25; i++ {
		certs = append(certs, NewCertificate(fmt.Sprintf("u/%d_f.pdf", i), 0, "", base.Add(time.Duration(i)*time.Minute)))
	}

	got := SortNewestFirst(certs)

	require.Len(t, got, ListLimit)
	assert.Equal(t, fmt.Sprintf("%d_f.pdf", ListLimit+24), got[0].StoredName)
}

func TestNewCertificate(t *testing.T) {
	at := time.Now()
	c := NewCertificate("user-1/1700000000000_my_cv.docx", 42, ContentTypeDOCX, at)

	assert.Equal(t, "user-1/1700000000000_my_cv.docx", c.Key)
	assert.Equal(t, "1700000000000_my_cv.docx", c.StoredName)
	assert.Equal(t, "my_cv.docx", c.OriginalFileName)
	assert.Equal(t, int64(42), c.SizeBytes)
	assert.Equal(t, at, c.CreatedAt)
}

func TestCertificateMatches(t *testing.T) {
	c := NewCertificate("u/1_Diploma.pdf", 0, "", time.Time{})

	assert.True(t, c.Matches(""))
	assert.True(t, c.Matches("DIP"))
	assert.True(t, c.Matches("loma.P"))
	assert.False(t, c.Matches("1_"))
	assert.False(t, c.Matches("resume"))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:9000/certificates/u/1_a.pdf", PublicURL("http://127.0.0.1:9000/", "certificates", "u/1_a.pdf"))
	assert.Equal(t, "https://cdn.example/certificates/u/1_a.pdf", PublicURL("https://cdn.example", "/certificates/", "/u/1_a.pdf"))
}
