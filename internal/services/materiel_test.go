package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/dbtest"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/internal/services"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestMaterielCreateComputesStatus(t *testing.T) {
	conn := dbtest.Open(t)
	tn := dbtest.SeedTenant(t, conn, "Mat", models.RoleConducteur)
	svc := services.NewMaterielService(conn, clock)
	ctx := context.Background()

	m, err := svc.Create(ctx, tn.Company.ID, services.MaterielInput{Nom: ptr("Nacelle"), DateDerniereVGP: ptr("2025-07-01T08:00:00Z")})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultEtat, m.Etat)

	v := svc.View(m)
	assert.Equal(t, models.ComplianceDueSoon, v.StatutVGP)
	require.NotNil(t, v.ProchaineVGP)
	assert.Equal(t, "2026-07-01", v.ProchaineVGP.Format("2006-01-02"))

	m2, err := svc.Create(ctx, tn.Company.ID, services.MaterielInput{Nom: ptr("Perceuse"), DateDerniereVGP: ptr("hier")})
	require.NoError(t, err, "unreadable dates never fail the request")
	assert.Nil(t, m2.DateDerniereVGP)
	assert.Equal(t, models.ComplianceUnknown, svc.View(m2).StatutVGP)

	_, err = svc.Create(ctx, tn.Company.ID, services.MaterielInput{Reference: ptr("R")})
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}

func TestMaterielTransfer(t *testing.T) {
	conn := dbtest.Open(t)
	a := dbtest.SeedTenant(t, conn, "TrA", models.RoleConducteur)
	b := dbtest.SeedTenant(t, conn, "TrB", models.RoleConducteur)
	siteA := dbtest.SeedChantier(t, conn, a.Company.ID, "A")
	siteB := dbtest.SeedChantier(t, conn, b.Company.ID, "B")
	svc := services.NewMaterielService(conn, clock)
	ctx := context.Background()

	m, err := svc.Create(ctx, a.Company.ID, services.MaterielInput{Nom: ptr("Grue")})
	require.NoError(t, err)

	require.NoError(t, svc.Transfer(ctx, m, &siteA.ID))
	onSite, err := svc.List(ctx, a.Company.ID, &siteA.ID)
	require.NoError(t, err)
	require.Len(t, onSite, 1)
	assert.Equal(t, m.ID, onSite[0].ID)

	err = svc.Transfer(ctx, m, &siteB.ID)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	missing := uint(9999)
	err = svc.Transfer(ctx, m, &missing)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	require.NoError(t, svc.Transfer(ctx, m, nil))
	reloaded, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ChantierID)
}

func TestMaterielImport(t *testing.T) {
	conn := dbtest.Open(t)
	tn := dbtest.SeedTenant(t, conn, "Imp", models.RoleConducteur)
	svc := services.NewMaterielService(conn, clock)
	ctx := context.Background()

	res, err := svc.Import(ctx, tn.Company.ID, strings.NewReader("nom,reference\nFoo,R1\n,R2\n"))
	require.NoError(t, err)
	assert.Equal(t, services.ImportResult{Imported: 1, Skipped: 1}, res)

	items, err := svc.List(ctx, tn.Company.ID, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Foo", items[0].Nom)
	assert.Equal(t, "R1", items[0].Reference)
	assert.Equal(t, "Bon", items[0].Etat)
}

func TestMaterielImportSemicolonAndColumns(t *testing.T) {
	conn := dbtest.Open(t)
	tn := dbtest.SeedTenant(t, conn, "Semi", models.RoleConducteur)
	svc := services.NewMaterielService(conn, clock)

	csvData := "\xef\xbb\xbfReference;Nom;Etat;Date_Derniere_VGP\nX1;Echafaudage;Usé;01/02/2026\nX2;Bétonnière;;\n"
	res, err := svc.Import(context.Background(), tn.Company.ID, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)

	items, err := svc.List(context.Background(), tn.Company.ID, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	byName := map[string]models.MaterielView{}
	for _, it := range items {
		byName[it.Nom] = it
	}
	assert.Equal(t, "Usé", byName["Echafaudage"].Etat)
	assert.Equal(t, models.ComplianceCompliant, byName["Echafaudage"].StatutVGP)
	assert.Equal(t, "Bon", byName["Bétonnière"].Etat)
}

func TestMaterielImportRejectsNonCSV(t *testing.T) {
	conn := dbtest.Open(t)
	svc := services.NewMaterielService(conn, clock)

	_, err := svc.Import(context.Background(), 1, strings.NewReader(""))
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
	assert.Equal(t, "csv_invalid", apperr.CodeOf(err))
}

func TestMaterielImportWithoutNomColumnSkipsRows(t *testing.T) {
	conn := dbtest.Open(t)
	tn := dbtest.SeedTenant(t, conn, "NoNom", models.RoleConducteur)
	svc := services.NewMaterielService(conn, clock)

	res, err := svc.Import(context.Background(), tn.Company.ID, strings.NewReader("reference,etat\nR1,Bon\nR2,Usé\n"))
	require.NoError(t, err)
	assert.Equal(t, services.ImportResult{Imported: 0, Skipped: 2}, res)

	items, err := svc.List(context.Background(), tn.Company.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMaterielImportRejectsOversizedFile(t *testing.T) {
	conn := dbtest.Open(t)
	tn := dbtest.SeedTenant(t, conn, "Big", models.RoleConducteur)
	svc := services.NewMaterielService(conn, clock)

	row := "Echafaudage,REF-0001,Bon,01/02/2026\n"
	csvData := "nom,reference,etat,date_derniere_vgp\n" + strings.Repeat(row, (5<<20)/len(row)+1)
	_, err := svc.Import(context.Background(), tn.Company.ID, strings.NewReader(csvData))
	require.Error(t, err)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
	assert.Equal(t, "file_too_large", apperr.CodeOf(err))

	items, err := svc.List(context.Background(), tn.Company.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}
