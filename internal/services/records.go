package services

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/validation"
)

// RecordService stores what is recorded on a site: reports, inspections, documents,
// installation plan, hot-work permits, prevention plans and PPSPS.
type RecordService struct {
	db  *gorm.DB
	now Clock
}

func NewRecordService(db *gorm.DB, now Clock) *RecordService {
	return &RecordService{db: db, now: orNow(now)}
}

func listBySite[T any](ctx context.Context, db *gorm.DB, chantierID uint, order string) ([]T, error) {
	out := []T{}
	err := db.WithContext(ctx).Where("chantier_id = ?", chantierID).Order(order).Find(&out).Error
	return out, err
}

func getByID[T any](ctx context.Context, db *gorm.DB, id uint, code string) (*T, error) {
	var v T
	if err := db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, notFound(err, code)
	}
	return &v, nil
}

// RapportInput is the payload of a field report. Images replaces the gallery when set.
type RapportInput struct {
	Titre         *string   `json:"titre"`
	Description   *string   `json:"description"`
	NiveauUrgence *string   `json:"niveau_urgence"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	PhotoURL      *string   `json:"photo_url"`
	Images        *[]string `json:"images"`
}

func (in RapportInput) Validate(create bool) validation.Violations {
	v := validation.Violations{}
	if create || in.Titre != nil {
		validation.RequiredPtr("titre", in.Titre, v)
	}
	if in.Titre != nil {
		validation.MaxLen("titre", *in.Titre, 255, v)
	}
	if in.NiveauUrgence != nil {
		validation.OneOf("niveau_urgence", *in.NiveauUrgence, models.UrgenceLevels, v)
	}
	validation.Coordinates(in.Latitude, in.Longitude, v)
	return v
}

func (in RapportInput) apply(r *models.Rapport) {
	if in.Titre != nil {
		r.Titre = trimmed(in.Titre)
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.NiveauUrgence != nil && *in.NiveauUrgence != "" {
		r.NiveauUrgence = *in.NiveauUrgence
	}
	if in.Latitude != nil {
		r.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		r.Longitude = in.Longitude
	}
	if in.PhotoURL != nil {
		r.PhotoURL = trimmed(in.PhotoURL)
	}
}

func imagesOf(urls []string) []models.RapportImage {
	out := make([]models.RapportImage, 0, len(urls))
	for _, u := range urls {
		if u != "" {
			out = append(out, models.RapportImage{URL: u})
		}
	}
	return out
}

// Rapports lists a site's reports with their images, newest first.
func (s *RecordService) Rapports(ctx context.Context, chantierID uint) ([]models.Rapport, error) {
	out := []models.Rapport{}
	err := s.db.WithContext(ctx).Preload("Images").Where("chantier_id = ?", chantierID).
		Order("date_creation DESC, id DESC").Find(&out).Error
	return out, err
}

func (s *RecordService) Rapport(ctx context.Context, id uint) (*models.Rapport, error) {
	var r models.Rapport
	if err := s.db.WithContext(ctx).Preload("Images").First(&r, id).Error; err != nil {
		return nil, notFound(err, "not_found")
	}
	return &r, nil
}

func (s *RecordService) CreateRapport(ctx context.Context, chantierID uint, in RapportInput) (*models.Rapport, error) {
	if v := in.Validate(true); !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	r := models.Rapport{ChantierID: chantierID, NiveauUrgence: models.UrgenceFaible, DateCreation: s.now()}
	in.apply(&r)
	if in.Images != nil {
		r.Images = imagesOf(*in.Images)
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RecordService) UpdateRapport(ctx context.Context, r *models.Rapport, in RapportInput) error {
	if v := in.Validate(false); !v.Empty() {
		return apperr.Invalid(v)
	}
	in.apply(r)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images").Save(r).Error; err != nil {
			return err
		}
		if in.Images == nil {
			return nil
		}
		if err := tx.Where("rapport_id = ?", r.ID).Delete(&models.RapportImage{}).Error; err != nil {
			return err
		}
		r.Images = imagesOf(*in.Images)
		for i := range r.Images {
			r.Images[i].RapportID = r.ID
		}
		if len(r.Images) == 0 {
			return nil
		}
		return tx.Create(&r.Images).Error
	})
}

func (s *RecordService) DeleteRapport(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rapport_id = ?", id).Delete(&models.RapportImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Rapport{}, id).Error
	})
}

// InspectionInput carries a filled checklist; Data is stored as received.
type InspectionInput struct {
	Titre    string         `json:"titre"`
	Type     string         `json:"type"`
	Data     datatypes.JSON `json:"data"`
	Createur string         `json:"createur"`
}

func (s *RecordService) Inspections(ctx context.Context, chantierID uint) ([]models.Inspection, error) {
	return listBySite[models.Inspection](ctx, s.db, chantierID, "date_creation DESC, id DESC")
}

func (s *RecordService) Inspection(ctx context.Context, id uint) (*models.Inspection, error) {
	return getByID[models.Inspection](ctx, s.db, id, "not_found")
}

// CreateInspection stores a checklist; author defaults to the caller's name.
func (s *RecordService) CreateInspection(ctx context.Context, chantierID uint, author string, in InspectionInput) (*models.Inspection, error) {
	v := validation.Violations{}
	validation.Required("titre", in.Titre, v)
	validation.MaxLen("titre", in.Titre, 255, v)
	if !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	if in.Createur == "" {
		in.Createur = author
	}
	i := models.Inspection{
		ChantierID: chantierID, Titre: in.Titre, Type: in.Type, Data: in.Data,
		Createur: in.Createur, DateCreation: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&i).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *RecordService) DeleteInspection(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Inspection{}, id).Error
}

// DocumentInput references an uploaded file.
type DocumentInput struct {
	Nom  string `json:"nom"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

func (in DocumentInput) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("nom", in.Nom, v)
	validation.Required("url", in.URL, v)
	validation.MaxLen("nom", in.Nom, 255, v)
	validation.MaxLen("url", in.URL, 1000, v)
	return v
}

func (s *RecordService) Documents(ctx context.Context, chantierID uint) ([]models.ChantierDocument, error) {
	return listBySite[models.ChantierDocument](ctx, s.db, chantierID, "date_ajout DESC, id DESC")
}

func (s *RecordService) Document(ctx context.Context, id uint) (*models.ChantierDocument, error) {
	return getByID[models.ChantierDocument](ctx, s.db, id, "not_found")
}

func (s *RecordService) CreateDocument(ctx context.Context, chantierID uint, in DocumentInput) (*models.ChantierDocument, error) {
	if v := in.Validate(); !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	d := models.ChantierDocument{ChantierID: chantierID, Nom: in.Nom, Type: in.Type, URL: in.URL, DateAjout: s.now()}
	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *RecordService) DeleteDocument(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.ChantierDocument{}, id).Error
}

// PICInput is the full installation plan; PUT replaces every field.
type PICInput struct {
	Acces         string         `json:"acces"`
	Clotures      string         `json:"clotures"`
	BaseVie       string         `json:"base_vie"`
	Stockage      string         `json:"stockage"`
	Dechets       string         `json:"dechets"`
	Levage        string         `json:"levage"`
	BackgroundURL string         `json:"background_url"`
	ElementsData  datatypes.JSON `json:"elements_data"`
}

// PIC returns the site's installation plan.
func (s *RecordService) PIC(ctx context.Context, chantierID uint) (*models.PIC, error) {
	var p models.PIC
	if err := s.db.WithContext(ctx).Where("chantier_id = ?", chantierID).First(&p).Error; err != nil {
		return nil, notFound(err, "not_found")
	}
	return &p, nil
}

// SavePIC creates or replaces the site's installation plan.
func (s *RecordService) SavePIC(ctx context.Context, chantierID uint, in PICInput) (*models.PIC, error) {
	var p models.PIC
	err := s.db.WithContext(ctx).Where("chantier_id = ?", chantierID).
		Attrs(models.PIC{ChantierID: chantierID}).FirstOrInit(&p).Error
	if err != nil {
		return nil, err
	}
	p.Acces, p.Clotures, p.BaseVie = in.Acces, in.Clotures, in.BaseVie
	p.Stockage, p.Dechets, p.Levage = in.Stockage, in.Dechets, in.Levage
	p.BackgroundURL, p.ElementsData = in.BackgroundURL, in.ElementsData
	p.DateUpdate = s.now()
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// PermisFeuInput is a hot-work permit; an unreadable date means today.
type PermisFeuInput struct {
	Date               string `json:"date"`
	Lieu               string `json:"lieu"`
	Intervenant        string `json:"intervenant"`
	DescriptionTravaux string `json:"description_travaux"`
	ExtincteurPresent  bool   `json:"extincteur_present"`
	ZoneDegagee        bool   `json:"zone_degagee"`
	SurveillanceApres  bool   `json:"surveillance_apres"`
	Signature          string `json:"signature"`
}

func (s *RecordService) PermisFeux(ctx context.Context, chantierID uint) ([]models.PermisFeu, error) {
	return listBySite[models.PermisFeu](ctx, s.db, chantierID, "date DESC, id DESC")
}

func (s *RecordService) PermisFeu(ctx context.Context, id uint) (*models.PermisFeu, error) {
	return getByID[models.PermisFeu](ctx, s.db, id, "not_found")
}

func (s *RecordService) CreatePermisFeu(ctx context.Context, chantierID uint, in PermisFeuInput) (*models.PermisFeu, error) {
	date := s.now()
	if d := models.ParseLenientDate(in.Date); d != nil {
		date = *d
	}
	p := models.PermisFeu{
		ChantierID: chantierID, Date: date, Lieu: in.Lieu, Intervenant: in.Intervenant,
		DescriptionTravaux: in.DescriptionTravaux, ExtincteurPresent: in.ExtincteurPresent,
		ZoneDegagee: in.ZoneDegagee, SurveillanceApres: in.SurveillanceApres, Signature: in.Signature,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// PlanPreventionInput is a prevention plan between the host and an outside company.
type PlanPreventionInput struct {
	EntrepriseUtilisatrice string         `json:"entreprise_utilisatrice"`
	EntrepriseExterieure   string         `json:"entreprise_exterieure"`
	DateInspectionCommune  string         `json:"date_inspection_commune"`
	ConsignesSecurite      string         `json:"consignes_securite"`
	RisquesInterferents    datatypes.JSON `json:"risques_interferents"`
	SignatureEU            string         `json:"signature_eu"`
	SignatureEE            string         `json:"signature_ee"`
}

func (s *RecordService) PlansPrevention(ctx context.Context, chantierID uint) ([]models.PlanPrevention, error) {
	return listBySite[models.PlanPrevention](ctx, s.db, chantierID, "date_creation DESC, id DESC")
}

func (s *RecordService) PlanPrevention(ctx context.Context, id uint) (*models.PlanPrevention, error) {
	return getByID[models.PlanPrevention](ctx, s.db, id, "not_found")
}

func (s *RecordService) CreatePlanPrevention(ctx context.Context, chantierID uint, in PlanPreventionInput) (*models.PlanPrevention, error) {
	v := validation.Violations{}
	validation.Required("entreprise_exterieure", in.EntrepriseExterieure, v)
	if !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	p := models.PlanPrevention{
		ChantierID:             chantierID,
		EntrepriseUtilisatrice: in.EntrepriseUtilisatrice,
		EntrepriseExterieure:   in.EntrepriseExterieure,
		DateInspectionCommune:  models.ParseLenientDate(in.DateInspectionCommune),
		ConsignesSecurite:      in.ConsignesSecurite,
		RisquesInterferents:    in.RisquesInterferents,
		SignatureEU:            in.SignatureEU,
		SignatureEE:            in.SignatureEE,
		DateCreation:           s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// PPSPSInput is the site health and safety plan.
type PPSPSInput struct {
	MaitreOuvrage       string         `json:"maitre_ouvrage"`
	MaitreOeuvre        string         `json:"maitre_oeuvre"`
	CoordonnateurSPS    string         `json:"coordonnateur_sps"`
	ResponsableChantier string         `json:"responsable_chantier"`
	NbCompagnons        int            `json:"nb_compagnons"`
	Horaires            string         `json:"horaires"`
	DureeTravaux        string         `json:"duree_travaux"`
	SecoursData         datatypes.JSON `json:"secours_data"`
	InstallationsData   datatypes.JSON `json:"installations_data"`
	TachesData          datatypes.JSON `json:"taches_data"`
}

func (s *RecordService) PPSPSList(ctx context.Context, chantierID uint) ([]models.PPSPS, error) {
	return listBySite[models.PPSPS](ctx, s.db, chantierID, "date_creation DESC, id DESC")
}

func (s *RecordService) PPSPS(ctx context.Context, id uint) (*models.PPSPS, error) {
	return getByID[models.PPSPS](ctx, s.db, id, "not_found")
}

func (s *RecordService) CreatePPSPS(ctx context.Context, chantierID uint, in PPSPSInput) (*models.PPSPS, error) {
	v := validation.Violations{}
	validation.RangeInt("nb_compagnons", in.NbCompagnons, 0, 10000, v)
	if !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	p := models.PPSPS{
		ChantierID:          chantierID,
		MaitreOuvrage:       in.MaitreOuvrage,
		MaitreOeuvre:        in.MaitreOeuvre,
		CoordonnateurSPS:    in.CoordonnateurSPS,
		ResponsableChantier: in.ResponsableChantier,
		NbCompagnons:        in.NbCompagnons,
		Horaires:            in.Horaires,
		DureeTravaux:        in.DureeTravaux,
		SecoursData:         in.SecoursData,
		InstallationsData:   in.InstallationsData,
		TachesData:          in.TachesData,
		DateCreation:        s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
