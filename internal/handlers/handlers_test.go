package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/auth"
	"github.com/diewo77/go-chantiers/internal/dbtest"
	"github.com/diewo77/go-chantiers/internal/handlers"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/internal/pdf"
	"github.com/diewo77/go-chantiers/internal/policy"
	"github.com/diewo77/go-chantiers/internal/services"
)

type fixture struct {
	t   *testing.T
	db  *gorm.DB
	mux *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	conn := dbtest.Open(t)
	g := policy.NewAuthGate(conn, time.Minute)
	sites := services.NewChantierService(conn, nil)
	records := services.NewRecordService(conn, nil)
	materiels := services.NewMaterielService(conn, nil)
	companies := services.NewCompanyService(conn, nil)
	export := services.NewExportService(records, pdf.NewGenerator(nil), nil)

	rh := handlers.NewRecordHandler(g, sites, records, services.NewUserService(conn), export)
	mh := handlers.NewMaterielHandler(g, materiels)
	dh := handlers.NewDUERPHandler(g, services.NewDUERPService(conn, nil), companies, export)
	th := handlers.NewTaskHandler(g, sites, services.NewTaskService(conn))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /chantiers/{id}/pic", rh.PIC)
	mux.HandleFunc("PUT /chantiers/{id}/pic", rh.SavePIC)
	mux.HandleFunc("POST /chantiers/{id}/inspections", rh.CreateInspection())
	mux.HandleFunc("DELETE /inspections/{id}", rh.DeleteInspection)
	mux.HandleFunc("POST /chantiers/{id}/ppsps", rh.CreatePPSPS())
	mux.HandleFunc("GET /ppsps/{id}/pdf", rh.PPSPSPDF)
	mux.HandleFunc("GET /materiels", mh.List)
	mux.HandleFunc("PUT /materiels/{id}/transfert", mh.Transfer)
	mux.HandleFunc("GET /duerp", dh.List)
	mux.HandleFunc("POST /duerp", dh.Save)
	mux.HandleFunc("GET /duerp/{annee}", dh.Get)
	mux.HandleFunc("GET /duerp/{annee}/pdf", dh.PDF)
	mux.HandleFunc("GET /tasks", th.Company)
	mux.HandleFunc("PUT /tasks/{id}", th.Update)
	return &fixture{t: t, db: conn, mux: mux}
}

func (f *fixture) do(tn dbtest.Tenant, method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(auth.WithIdentity(req.Context(), tn.Identity()))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestPICUpsert(t *testing.T) {
	f := newFixture(t)
	tn := dbtest.SeedTenant(t, f.db, "Alpha", models.RoleChefChantier)
	site := dbtest.SeedChantier(t, f.db, tn.Company.ID, "Ecole")
	path := fmt.Sprintf("/chantiers/%d/pic", site.ID)

	assert.Equal(t, http.StatusNotFound, f.do(tn, http.MethodGet, path, nil).Code)

	rec := f.do(tn, http.MethodPut, path, map[string]any{"acces": "Portail nord", "elements_data": []any{map[string]any{"type": "grue"}}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(tn, http.MethodPut, path, map[string]any{"acces": "Portail sud"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var count int64
	f.db.Model(&models.PIC{}).Where("chantier_id = ?", site.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	rec = f.do(tn, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Portail sud")
}

func TestInspectionAuthorFromCaller(t *testing.T) {
	f := newFixture(t)
	a := dbtest.SeedTenant(t, f.db, "Alpha", models.RoleConducteur)
	b := dbtest.SeedTenant(t, f.db, "Beta", models.RoleConducteur)
	site := dbtest.SeedChantier(t, f.db, a.Company.ID, "Ecole")

	rec := f.do(a, http.MethodPost, fmt.Sprintf("/chantiers/%d/inspections", site.ID),
		map[string]any{"titre": "Echafaudage", "type": "echafaudage", "data": map[string]any{"garde_corps": true}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var insp models.Inspection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &insp))
	assert.Equal(t, a.User.FullName, insp.Createur)

	del := fmt.Sprintf("/inspections/%d", insp.ID)
	assert.Equal(t, http.StatusForbidden, f.do(b, http.MethodDelete, del, nil).Code)
	assert.Equal(t, http.StatusNoContent, f.do(a, http.MethodDelete, del, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(a, http.MethodDelete, del, nil).Code)
}

func TestSafetyDocumentPDF(t *testing.T) {
	f := newFixture(t)
	a := dbtest.SeedTenant(t, f.db, "Alpha", models.RoleConducteur)
	b := dbtest.SeedTenant(t, f.db, "Beta", models.RoleLecteur)
	site := dbtest.SeedChantier(t, f.db, a.Company.ID, "Ecole")

	rec := f.do(a, http.MethodPost, fmt.Sprintf("/chantiers/%d/ppsps", site.ID),
		map[string]any{"maitre_ouvrage": "Mairie", "nb_compagnons": 12})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p models.PPSPS
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))

	rec = f.do(a, http.MethodGet, fmt.Sprintf("/ppsps/%d/pdf", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, fmt.Sprintf(`attachment; filename="ppsps-%d.pdf"`, p.ID), rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	assert.Equal(t, http.StatusForbidden, f.do(b, http.MethodGet, fmt.Sprintf("/ppsps/%d/pdf", p.ID), nil).Code)
}

func TestMaterielTransfer(t *testing.T) {
	f := newFixture(t)
	a := dbtest.SeedTenant(t, f.db, "Alpha", models.RoleConducteur)
	b := dbtest.SeedTenant(t, f.db, "Beta", models.RoleConducteur)
	siteA := dbtest.SeedChantier(t, f.db, a.Company.ID, "A1")
	siteB := dbtest.SeedChantier(t, f.db, b.Company.ID, "B1")
	m := models.Materiel{CompanyID: a.Company.ID, Nom: "Nacelle", Etat: models.DefaultEtat}
	require.NoError(t, f.db.Create(&m).Error)
	path := fmt.Sprintf("/materiels/%d/transfert", m.ID)

	rec := f.do(a, http.MethodPut, path, map[string]any{"chantier_id": siteA.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(a, http.MethodGet, fmt.Sprintf("/materiels?chantier_id=%d", siteA.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var onSite []models.MaterielView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &onSite))
	require.Len(t, onSite, 1)
	assert.Equal(t, models.ComplianceUnknown, onSite[0].StatutVGP)

	assert.Equal(t, http.StatusForbidden, f.do(a, http.MethodPut, path, map[string]any{"chantier_id": siteB.ID}).Code)
	assert.Equal(t, http.StatusNotFound, f.do(a, http.MethodPut, path, map[string]any{"chantier_id": 99999}).Code)

	rec = f.do(a, http.MethodPut, path, map[string]any{"chantier_id": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	var stored models.Materiel
	require.NoError(t, f.db.First(&stored, m.ID).Error)
	assert.Nil(t, stored.ChantierID)

	assert.Equal(t, http.StatusBadRequest, f.do(a, http.MethodGet, "/materiels?chantier_id=x", nil).Code)
}

func TestDUERPByYear(t *testing.T) {
	f := newFixture(t)
	tn := dbtest.SeedTenant(t, f.db, "Alpha", models.RoleConducteur)
	other := dbtest.SeedTenant(t, f.db, "Beta", models.RoleConducteur)

	body := map[string]any{"annee": 2026, "lignes": []map[string]any{
		{"tache": "Maçonnerie", "risque": "Chute", "gravite": 3},
		{"tache": "Peinture", "risque": "Solvants", "gravite": 2},
	}}
	require.Equal(t, http.StatusOK, f.do(tn, http.MethodPost, "/duerp", body).Code)
	body["lignes"] = []map[string]any{{"tache": "Levage", "risque": "Ecrasement", "gravite": 4}}
	require.Equal(t, http.StatusOK, f.do(tn, http.MethodPost, "/duerp", body).Code)

	rec := f.do(tn, http.MethodGet, "/duerp/2026", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var d models.DUERP
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	require.Len(t, d.Lignes, 1)
	assert.Equal(t, "Levage", d.Lignes[0].Tache)

	assert.Equal(t, http.StatusNotFound, f.do(other, http.MethodGet, "/duerp/2026", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(tn, http.MethodGet, "/duerp/deux", nil).Code)

	rec = f.do(tn, http.MethodPost, "/duerp", map[string]any{"annee": 1999, "lignes": []map[string]any{{"gravite": 9}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "lignes.0.gravite")

	rec = f.do(tn, http.MethodGet, "/duerp/2026/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestCompanyTasks(t *testing.T) {
	f := newFixture(t)
	a := dbtest.SeedTenant(t, f.db, "Alpha", models.RoleChefChantier)
	b := dbtest.SeedTenant(t, f.db, "Beta", models.RoleChefChantier)
	siteA := dbtest.SeedChantier(t, f.db, a.Company.ID, "A1")
	siteB := dbtest.SeedChantier(t, f.db, b.Company.ID, "B1")
	ta := models.Task{ChantierID: siteA.ID, Description: "Baliser", Statut: models.TaskTodo}
	tb := models.Task{ChantierID: siteB.ID, Description: "Nettoyer", Statut: models.TaskTodo}
	require.NoError(t, f.db.Create(&ta).Error)
	require.NoError(t, f.db.Create(&tb).Error)

	rec := f.do(a, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, ta.ID, tasks[0].ID)

	rec = f.do(a, http.MethodPut, fmt.Sprintf("/tasks/%d", ta.ID), map[string]any{"statut": models.TaskDone})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusForbidden, f.do(a, http.MethodPut, fmt.Sprintf("/tasks/%d", tb.ID), map[string]any{"statut": models.TaskDone}).Code)
}
