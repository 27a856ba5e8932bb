package pdf

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/diewo77/go-chantiers/internal/models"
)

type fakeFetcher struct {
	data  []byte
	err   error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, extension.Type, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, extension.Png, nil
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sampleChantier() models.Chantier {
	lat, lon := 48.8566, 2.3522
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return models.Chantier{
		ID: 1, Nom: "Résidence Les Tilleuls", Client: "Ville", Adresse: "1 rue de Paris",
		DateDebut: &start, StatutPlanning: models.PlanningEnCours, EstActif: true,
		Latitude: &lat, Longitude: &lon,
	}
}

func TestChantierReport(t *testing.T) {
	fetch := &fakeFetcher{data: tinyPNG(t)}
	g := NewGenerator(fetch)
	rapports := []models.Rapport{
		{Titre: "Fissure", NiveauUrgence: models.UrgenceCritique, Description: "Mur porteur nord", PhotoURL: "http://img/1.png",
			Images: []models.RapportImage{{URL: "http://img/2.png"}}},
		{Titre: "RAS", NiveauUrgence: models.UrgenceFaible},
	}
	out, err := g.ChantierReport(context.Background(), sampleChantier(), rapports)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, []string{"http://img/1.png", "http://img/2.png"}, fetch.calls)
}

func TestImageFailureRendersPlaceholder(t *testing.T) {
	g := NewGenerator(&fakeFetcher{err: errors.New("boom")})
	c := sampleChantier()
	c.CoverURL = "http://img/cover.jpg"
	out, err := g.ChantierReport(context.Background(), c, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	out, err = NewGenerator(nil).PermisFeu(context.Background(), c, models.PermisFeu{Signature: "http://sig"})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestSafetyDocuments(t *testing.T) {
	g := NewGenerator(&fakeFetcher{data: tinyPNG(t)})
	ctx := context.Background()
	c := sampleChantier()

	cases := map[string]func() ([]byte, error){
		"ppsps": func() ([]byte, error) {
			return g.PPSPS(ctx, c, models.PPSPS{
				MaitreOuvrage: "Mairie", NbCompagnons: 12,
				SecoursData: datatypes.JSON(`{"hopital":"CHU","numeros":["15","18"]}`),
				TachesData:  datatypes.JSON(`[{"tache":"Coffrage","risque":"Chute"}]`),
			})
		},
		"plan": func() ([]byte, error) {
			return g.PlanPrevention(ctx, c, models.PlanPrevention{
				EntrepriseExterieure: "Elec SA", RisquesInterferents: datatypes.JSON(`"levage"`),
			})
		},
		"permis": func() ([]byte, error) {
			return g.PermisFeu(ctx, c, models.PermisFeu{Date: time.Now(), Lieu: "Toiture", ExtincteurPresent: true})
		},
		"pic": func() ([]byte, error) {
			return g.PIC(ctx, c, models.PIC{Acces: "Portail sud", BackgroundURL: "http://img/plan.png",
				ElementsData: datatypes.JSON(`[{"type":"grue","x":10,"y":20}]`)})
		},
		"duerp": func() ([]byte, error) {
			return g.DUERP(ctx, models.Company{Name: "BTP"}, models.DUERP{Annee: 2026, Lignes: []models.DUERPLigne{
				{Position: 2, Tache: "Maçonnerie", Risque: "Port de charges", Gravite: 2},
				{Position: 1, Tache: "Toiture", Risque: "Chute de hauteur", Gravite: 4},
			}})
		},
	}
	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := gen()
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
		})
	}
}

func TestFlattenJSON(t *testing.T) {
	lines := flattenJSON([]byte(`{"a":1,"b":{"c":true},"d":["x","y"]}`))
	assert.Equal(t, []string{"a 1", "b", "  c oui", "d", "  - x", "  - y"}, lines)
	assert.Equal(t, []string{"texte"}, flattenJSON([]byte(`"texte"`)))
	assert.Nil(t, flattenJSON([]byte(`{broken`)))
	assert.Nil(t, flattenJSON(nil))
	assert.Empty(t, flattenJSON([]byte(`null`)))
}

func TestSniff(t *testing.T) {
	ext, err := Sniff(tinyPNG(t))
	require.NoError(t, err)
	assert.Equal(t, extension.Png, ext)

	_, err = Sniff([]byte("GIF89a not really"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestHTTPImageFetcher(t *testing.T) {
	pic := tinyPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pic)
		case "/text":
			_, _ = w.Write([]byte("hello"))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write(pic)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPImageFetcher(50 * time.Millisecond)
	data, ext, err := f.Fetch(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, pic, data)
	assert.Equal(t, extension.Png, ext)

	_, _, err = f.Fetch(context.Background(), srv.URL+"/text")
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, _, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)

	_, _, err = f.Fetch(context.Background(), srv.URL+"/slow")
	assert.Error(t, err)
}
