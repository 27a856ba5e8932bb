package view

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type site struct {
	Nom       string
	Client    string
	Adresse   string
	DateDebut *time.Time
	DateFin   *time.Time
}

func TestRenderEmail(t *testing.T) {
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	html, err := RenderEmail("fr", "chantier_report.html", map[string]any{
		"Subject":      "Rapport",
		"CompanyName":  "BTP <Démo>",
		"Message":      "Bonjour,\nci-joint le rapport.",
		"RapportCount": 3,
		"Chantier":     site{Nom: "Résidence Les Tilleuls", Client: "Ville de Lyon", DateDebut: &start},
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Résidence Les Tilleuls")
	assert.Contains(t, html, "03/02/2025")
	assert.Contains(t, html, "BTP &lt;Démo&gt;")
	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	// the empty end date renders as a dash
	assert.Contains(t, html, ">-</td>")
}

func TestRenderEmailUnknownTemplate(t *testing.T) {
	_, err := RenderEmail("fr", "missing.html", nil)
	assert.Error(t, err)
}
