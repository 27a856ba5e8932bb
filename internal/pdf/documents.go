package pdf

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/diewo77/go-chantiers/internal/metrics"
	"github.com/diewo77/go-chantiers/internal/models"
)

// ChantierReport renders the site summary followed by its field reports.
func (g *Generator) ChantierReport(ctx context.Context, c models.Chantier, rapports []models.Rapport) ([]byte, error) {
	d, err := g.newDoc(ctx, "Rapport de chantier", c.Nom)
	if err != nil {
		return nil, err
	}
	d.section("Informations")
	d.fields(chantierFields(c)...)
	d.image(c.CoverURL)

	d.section(fmt.Sprintf("Rapports (%d)", len(rapports)))
	if len(rapports) == 0 {
		d.paragraph("Aucun rapport.")
	}
	for i, r := range rapports {
		if i > 0 {
			d.paragraph(" ")
		}
		d.fields(
			[2]string{"Titre", r.Titre},
			[2]string{"Urgence", r.NiveauUrgence},
			[2]string{"Date", r.DateCreation.Format("02/01/2006 15:04")},
		)
		if r.Latitude != nil && r.Longitude != nil {
			d.fields([2]string{"Position", coords(*r.Latitude, *r.Longitude)})
		}
		d.paragraph(r.Description)
		d.image(r.PhotoURL)
		for _, img := range r.Images {
			d.image(img.URL)
		}
	}
	return g.finish(d, "chantier")
}

// PPSPS renders the health and safety plan of c.
func (g *Generator) PPSPS(ctx context.Context, c models.Chantier, p models.PPSPS) ([]byte, error) {
	d, err := g.newDoc(ctx, "PPSPS", c.Nom)
	if err != nil {
		return nil, err
	}
	d.section("Chantier")
	d.fields(chantierFields(c)...)
	d.section("Intervenants")
	d.fields(
		[2]string{"Maître d'ouvrage", p.MaitreOuvrage},
		[2]string{"Maître d'oeuvre", p.MaitreOeuvre},
		[2]string{"Coordonnateur SPS", p.CoordonnateurSPS},
		[2]string{"Responsable chantier", p.ResponsableChantier},
		[2]string{"Compagnons", strconv.Itoa(p.NbCompagnons)},
		[2]string{"Horaires", p.Horaires},
		[2]string{"Durée des travaux", p.DureeTravaux},
	)
	d.section("Secours")
	d.json("Organisation des secours", p.SecoursData)
	d.section("Installations")
	d.json("Installations de chantier", p.InstallationsData)
	d.section("Tâches et risques")
	d.json("Analyse des tâches", p.TachesData)
	return g.finish(d, "ppsps")
}

// PlanPrevention renders a prevention plan.
func (g *Generator) PlanPrevention(ctx context.Context, c models.Chantier, p models.PlanPrevention) ([]byte, error) {
	d, err := g.newDoc(ctx, "Plan de prévention", c.Nom)
	if err != nil {
		return nil, err
	}
	d.section("Entreprises")
	d.fields(
		[2]string{"Entreprise utilisatrice", p.EntrepriseUtilisatrice},
		[2]string{"Entreprise extérieure", p.EntrepriseExterieure},
		[2]string{"Inspection commune", formatDate(p.DateInspectionCommune)},
		[2]string{"Chantier", c.Nom},
		[2]string{"Adresse", c.Adresse},
	)
	d.section("Risques interférents")
	d.json("Risques", p.RisquesInterferents)
	d.section("Consignes de sécurité")
	d.paragraph(p.ConsignesSecurite)
	d.section("Signatures")
	d.fields([2]string{"Entreprise utilisatrice", ""})
	d.image(p.SignatureEU)
	d.fields([2]string{"Entreprise extérieure", ""})
	d.image(p.SignatureEE)
	return g.finish(d, "plan_prevention")
}

// PermisFeu renders a hot-work permit.
func (g *Generator) PermisFeu(ctx context.Context, c models.Chantier, p models.PermisFeu) ([]byte, error) {
	d, err := g.newDoc(ctx, "Permis de feu", c.Nom)
	if err != nil {
		return nil, err
	}
	d.section("Intervention")
	d.fields(
		[2]string{"Date", p.Date.Format("02/01/2006")},
		[2]string{"Lieu", p.Lieu},
		[2]string{"Intervenant", p.Intervenant},
	)
	d.paragraph(p.DescriptionTravaux)
	d.section("Mesures de prévention")
	d.fields(
		[2]string{"Extincteur présent", yesNo(p.ExtincteurPresent)},
		[2]string{"Zone dégagée", yesNo(p.ZoneDegagee)},
		[2]string{"Surveillance après travaux", yesNo(p.SurveillanceApres)},
	)
	d.section("Signature")
	d.image(p.Signature)
	return g.finish(d, "permis_feu")
}

// PIC renders the installation plan of c.
func (g *Generator) PIC(ctx context.Context, c models.Chantier, p models.PIC) ([]byte, error) {
	d, err := g.newDoc(ctx, "Plan d'installation de chantier", c.Nom)
	if err != nil {
		return nil, err
	}
	d.section("Chantier")
	d.fields(chantierFields(c)...)
	d.section("Plan")
	d.image(p.BackgroundURL)
	d.json("Éléments", p.ElementsData)
	d.section("Organisation")
	d.fields(
		[2]string{"Accès", p.Acces},
		[2]string{"Clôtures", p.Clotures},
		[2]string{"Base vie", p.BaseVie},
		[2]string{"Stockage", p.Stockage},
		[2]string{"Déchets", p.Dechets},
		[2]string{"Levage", p.Levage},
	)
	return g.finish(d, "pic")
}

// DUERP renders the risk register of one year, lines ordered by position.
func (g *Generator) DUERP(ctx context.Context, company models.Company, r models.DUERP) ([]byte, error) {
	d, err := g.newDoc(ctx, fmt.Sprintf("Document unique %d", r.Annee), company.Name)
	if err != nil {
		return nil, err
	}
	d.section("Entreprise")
	d.fields(
		[2]string{"Raison sociale", company.Name},
		[2]string{"SIRET", company.Siret},
		[2]string{"Adresse", company.Address},
		[2]string{"Mise à jour", r.DateMiseAJour.Format("02/01/2006")},
	)
	lignes := append([]models.DUERPLigne(nil), r.Lignes...)
	sort.SliceStable(lignes, func(i, j int) bool { return lignes[i].Position < lignes[j].Position })
	d.section(fmt.Sprintf("Risques évalués (%d)", len(lignes)))
	for i, l := range lignes {
		d.fields(
			[2]string{strconv.Itoa(i+1) + ". " + l.Tache, l.Risque},
			[2]string{"Gravité", gravite(l.Gravite)},
			[2]string{"Mesures réalisées", l.MesuresRealisees},
			[2]string{"Mesures à réaliser", l.MesuresARealiser},
		)
	}
	return g.finish(d, "duerp")
}

func (g *Generator) finish(d *doc, kind string) ([]byte, error) {
	out, err := d.bytes()
	if err != nil {
		return nil, err
	}
	metrics.PDF(kind)
	return out, nil
}

func chantierFields(c models.Chantier) [][2]string {
	fields := [][2]string{
		{"Client", c.Client},
		{"Adresse", c.Adresse},
		{"Début", formatDate(c.DateDebut)},
		{"Fin", formatDate(c.DateFin)},
		{"Statut", strings.ReplaceAll(c.StatutPlanning, "_", " ")},
	}
	if c.HasCoordinates() {
		fields = append(fields, [2]string{"Coordonnées", coords(*c.Latitude, *c.Longitude)})
	}
	return fields
}

func coords(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', 5, 64) + ", " + strconv.FormatFloat(lon, 'f', 5, 64)
}

func gravite(n int) string {
	switch n {
	case 1:
		return "1 - Faible"
	case 2:
		return "2 - Moyenne"
	case 3:
		return "3 - Grave"
	case 4:
		return "4 - Critique"
	default:
		return strconv.Itoa(n)
	}
}
