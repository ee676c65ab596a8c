package admin

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-logr/logr"

	"github.com/carcosmetics/service/internal/catalog"
	"github.com/carcosmetics/service/internal/upload"
)

//go:embed templates
var templatesFS embed.FS

// maxFormMemory is the in-memory budget for multipart forms; larger files spill to disk.
const maxFormMemory = 32 << 20

// DefaultMaxBodyBytes caps an admin form submission when no limit is configured.
const DefaultMaxBodyBytes = 64 << 20

var slotLabels = map[Slot]string{
	SlotFront: "Front image",
	SlotSide:  "Side image",
	SlotRear:  "Rear image",
}

// Handler serves the admin UI.
type Handler struct {
	flow     *Flow
	catalog  *catalog.Service
	log      logr.Logger
	themeURL string
	maxBody  int64
	pages    map[string]*template.Template
}

// NewHandler parses the embedded templates. theme is a Bootswatch theme name
// or "default" for plain Bootstrap. maxBodyBytes caps each form submission;
// zero or less means DefaultMaxBodyBytes.
func NewHandler(flow *Flow, svc *catalog.Service, theme string, maxBodyBytes int64, log logr.Logger) (*Handler, error) {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	pages := make(map[string]*template.Template)
	for _, name := range []string{"index", "vehicle_list", "vehicle_form", "set_list", "set_form"} {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Handler{
		flow:     flow,
		catalog:  svc,
		log:      log,
		themeURL: ThemeURL(theme),
		maxBody:  maxBodyBytes,
		pages:    pages,
	}, nil
}

// ThemeURL returns the stylesheet URL of a Bootstrap 3 Bootswatch theme.
func ThemeURL(theme string) string {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme == "" || theme == "default" {
		return "https://cdnjs.cloudflare.com/ajax/libs/twitter-bootstrap/3.4.1/css/bootstrap.min.css"
	}
	return "https://cdnjs.cloudflare.com/ajax/libs/bootswatch/3.4.1/" + theme + "/bootstrap.min.css"
}

// Routes returns the admin router, to be mounted under /admin.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Index)

	r.Route("/vehicles", func(r chi.Router) {
		r.Get("/", h.ListVehicles)
		r.Get("/new", h.NewVehicle)
		r.Post("/", h.CreateVehicle)
		r.Get("/{id}/edit", h.EditVehicle)
		r.Post("/{id}", h.UpdateVehicle)
		r.Post("/{id}/delete", h.DeleteVehicle)
	})

	r.Route("/cosmetic-sets", func(r chi.Router) {
		r.Get("/", h.ListCosmeticSets)
		r.Get("/new", h.NewCosmeticSet)
		r.Post("/", h.CreateCosmeticSet)
		r.Get("/{id}/edit", h.EditCosmeticSet)
		r.Post("/{id}", h.UpdateCosmeticSet)
		r.Post("/{id}/delete", h.DeleteCosmeticSet)
	})
	return r
}

type page struct {
	Title    string
	Section  string
	ThemeURL string
	Data     any
}

type vehicleForm struct {
	ID       catalog.ID
	Name     string
	Class    string
	ImageURL string
	Classes  []string
	Errors   map[string]string
}

type slotView struct {
	Slot  Slot
	Label string
	URL   string
}

type setForm struct {
	ID         catalog.ID
	SetName    string
	VehicleID  catalog.ID
	SetEffects string
	PartsText  string
	Images     []slotView
	Vehicles   []catalog.Vehicle
	Errors     map[string]string
}

type setRow struct {
	ID          catalog.ID
	SetName     string
	VehicleName string
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, p page) {
	p.ThemeURL = h.themeURL
	var buf strings.Builder
	if err := h.pages[name].ExecuteTemplate(&buf, "layout", p); err != nil {
		h.log.Error(err, "render admin page", "page", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, buf.String())
}

// fail maps a flow or catalog error that is not a validation failure to a response.
func (h *Handler) fail(w http.ResponseWriter, err error, msg string) {
	if h.catalog.IsNotFound(err) {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	h.log.Error(err, msg)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// Index shows record counts per collection.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.catalog.ListVehicles(r.Context())
	if err != nil {
		h.fail(w, err, "list vehicles")
		return
	}
	sets, err := h.catalog.ListCosmeticSets(r.Context())
	if err != nil {
		h.fail(w, err, "list cosmetic sets")
		return
	}
	h.render(w, http.StatusOK, "index", page{
		Title: "Home",
		Data:  struct{ Vehicles, Sets int }{len(vehicles), len(sets)},
	})
}

// ListVehicles shows all vehicles sorted by class.
func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.catalog.ListVehicles(r.Context())
	if err != nil {
		h.fail(w, err, "list vehicles")
		return
	}
	sort.SliceStable(vehicles, func(i, j int) bool { return vehicles[i].Class < vehicles[j].Class })
	h.render(w, http.StatusOK, "vehicle_list", page{Title: "Vehicles", Section: "vehicles", Data: vehicles})
}

// NewVehicle shows an empty vehicle form.
func (h *Handler) NewVehicle(w http.ResponseWriter, r *http.Request) {
	h.renderVehicleForm(w, http.StatusOK, vehicleForm{})
}

// EditVehicle shows the form of an existing vehicle.
func (h *Handler) EditVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.catalog.GetVehicle(r.Context(), catalog.ID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, err, "get vehicle")
		return
	}
	h.renderVehicleForm(w, http.StatusOK, vehicleForm{ID: v.ID, Name: v.Name, Class: v.Class, ImageURL: v.ImageURL})
}

// CreateVehicle handles the new vehicle form.
func (h *Handler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	h.saveVehicle(w, r, "")
}

// UpdateVehicle handles the edit vehicle form.
func (h *Handler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	h.saveVehicle(w, r, catalog.ID(chi.URLParam(r, "id")))
}

func (h *Handler) saveVehicle(w http.ResponseWriter, r *http.Request, id catalog.ID) {
	form, err := parseForm(w, r, h.maxBody)
	if err != nil {
		h.formError(w, err)
		return
	}
	defer form.Close()

	image, err := form.file("image")
	if err != nil {
		http.Error(w, "invalid file upload", http.StatusBadRequest)
		return
	}

	sub := VehicleSubmission{
		ID:    id,
		Name:  strings.TrimSpace(r.PostFormValue("name")),
		Class: strings.TrimSpace(r.PostFormValue("class_name")),
		Image: image,
	}

	v, err := h.flow.SaveVehicle(r.Context(), sub)
	var ve *catalog.ValidationError
	if errors.As(err, &ve) {
		current := vehicleForm{ID: id, Name: sub.Name, Class: sub.Class, Errors: ve.Fields()}
		if id != "" {
			if stored, err := h.catalog.GetVehicle(r.Context(), id); err == nil {
				current.ImageURL = stored.ImageURL
			}
		}
		h.renderVehicleForm(w, http.StatusUnprocessableEntity, current)
		return
	}
	if err != nil {
		h.fail(w, err, "save vehicle")
		return
	}

	h.log.Info("vehicle saved", "id", v.ID, "name", v.Name)
	http.Redirect(w, r, "/admin/vehicles", http.StatusSeeOther)
}

func (h *Handler) renderVehicleForm(w http.ResponseWriter, status int, form vehicleForm) {
	form.Classes = catalog.Classes()
	title := "New vehicle"
	if form.ID != "" {
		title = "Edit vehicle"
	}
	h.render(w, status, "vehicle_form", page{Title: title, Section: "vehicles", Data: form})
}

// DeleteVehicle removes a vehicle.
func (h *Handler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id := catalog.ID(chi.URLParam(r, "id"))
	if err := h.catalog.DeleteVehicle(r.Context(), id); err != nil {
		h.fail(w, err, "delete vehicle")
		return
	}
	h.log.Info("vehicle deleted", "id", id)
	http.Redirect(w, r, "/admin/vehicles", http.StatusSeeOther)
}

// ListCosmeticSets shows all cosmetic sets sorted by vehicle name.
func (h *Handler) ListCosmeticSets(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.catalog.ListVehicles(r.Context())
	if err != nil {
		h.fail(w, err, "list vehicles")
		return
	}
	sets, err := h.catalog.ListCosmeticSets(r.Context())
	if err != nil {
		h.fail(w, err, "list cosmetic sets")
		return
	}

	names := make(map[catalog.ID]string, len(vehicles))
	for _, v := range vehicles {
		names[v.ID] = v.Name
	}
	rows := make([]setRow, 0, len(sets))
	for _, c := range sets {
		name, ok := names[c.VehicleID]
		if !ok {
			name = "(missing vehicle)"
		}
		rows = append(rows, setRow{ID: c.ID, SetName: c.SetName, VehicleName: name})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].VehicleName < rows[j].VehicleName })

	h.render(w, http.StatusOK, "set_list", page{Title: "Cosmetic Sets", Section: "cosmetic-sets", Data: rows})
}

// NewCosmeticSet shows an empty cosmetic set form.
func (h *Handler) NewCosmeticSet(w http.ResponseWriter, r *http.Request) {
	h.renderSetForm(w, r, http.StatusOK, setForm{}, &catalog.CosmeticSet{})
}

// EditCosmeticSet shows the form of an existing cosmetic set.
func (h *Handler) EditCosmeticSet(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.GetCosmeticSet(r.Context(), catalog.ID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, err, "get cosmetic set")
		return
	}
	h.renderSetForm(w, r, http.StatusOK, setForm{
		ID:         c.ID,
		SetName:    c.SetName,
		VehicleID:  c.VehicleID,
		SetEffects: c.SetEffects,
		PartsText:  strings.Join(c.Parts, "\n"),
	}, c)
}

// CreateCosmeticSet handles the new cosmetic set form.
func (h *Handler) CreateCosmeticSet(w http.ResponseWriter, r *http.Request) {
	h.saveCosmeticSet(w, r, "")
}

// UpdateCosmeticSet handles the edit cosmetic set form.
func (h *Handler) UpdateCosmeticSet(w http.ResponseWriter, r *http.Request) {
	h.saveCosmeticSet(w, r, catalog.ID(chi.URLParam(r, "id")))
}

func (h *Handler) saveCosmeticSet(w http.ResponseWriter, r *http.Request, id catalog.ID) {
	form, err := parseForm(w, r, h.maxBody)
	if err != nil {
		h.formError(w, err)
		return
	}
	defer form.Close()

	images := make(map[Slot]*upload.File)
	for _, slot := range Slots() {
		f, err := form.file(string(slot))
		if err != nil {
			http.Error(w, "invalid file upload", http.StatusBadRequest)
			return
		}
		if f != nil {
			images[slot] = f
		}
	}

	partsText := r.PostFormValue("parts")
	sub := CosmeticSetSubmission{
		ID:         id,
		SetName:    strings.TrimSpace(r.PostFormValue("set_name")),
		VehicleID:  catalog.ID(strings.TrimSpace(r.PostFormValue("car"))),
		SetEffects: strings.TrimSpace(r.PostFormValue("set_effects")),
		Parts:      splitParts(partsText),
		Images:     images,
	}

	c, err := h.flow.SaveCosmeticSet(r.Context(), sub)
	var ve *catalog.ValidationError
	if errors.As(err, &ve) {
		current := &catalog.CosmeticSet{}
		if id != "" {
			if stored, err := h.catalog.GetCosmeticSet(r.Context(), id); err == nil {
				current = stored
			}
		}
		h.renderSetForm(w, r, http.StatusUnprocessableEntity, setForm{
			ID:         id,
			SetName:    sub.SetName,
			VehicleID:  sub.VehicleID,
			SetEffects: sub.SetEffects,
			PartsText:  partsText,
			Errors:     ve.Fields(),
		}, current)
		return
	}
	if err != nil {
		h.fail(w, err, "save cosmetic set")
		return
	}

	h.log.Info("cosmetic set saved", "id", c.ID, "set", c.SetName, "vehicle", c.VehicleID)
	http.Redirect(w, r, "/admin/cosmetic-sets", http.StatusSeeOther)
}

func (h *Handler) renderSetForm(w http.ResponseWriter, r *http.Request, status int, form setForm, stored *catalog.CosmeticSet) {
	vehicles, err := h.catalog.ListVehicles(r.Context())
	if err != nil {
		h.fail(w, err, "list vehicles")
		return
	}
	sort.SliceStable(vehicles, func(i, j int) bool { return vehicles[i].Name < vehicles[j].Name })
	form.Vehicles = vehicles

	for _, slot := range Slots() {
		form.Images = append(form.Images, slotView{Slot: slot, Label: slotLabels[slot], URL: slot.URL(stored)})
	}

	title := "New cosmetic set"
	if form.ID != "" {
		title = "Edit cosmetic set"
	}
	h.render(w, status, "set_form", page{Title: title, Section: "cosmetic-sets", Data: form})
}

// DeleteCosmeticSet removes a cosmetic set.
func (h *Handler) DeleteCosmeticSet(w http.ResponseWriter, r *http.Request) {
	id := catalog.ID(chi.URLParam(r, "id"))
	if err := h.catalog.DeleteCosmeticSet(r.Context(), id); err != nil {
		h.fail(w, err, "delete cosmetic set")
		return
	}
	h.log.Info("cosmetic set deleted", "id", id)
	http.Redirect(w, r, "/admin/cosmetic-sets", http.StatusSeeOther)
}

// splitParts turns the one-part-per-line textarea into a list, dropping blank lines.
func splitParts(text string) []string {
	parts := []string{}
	for _, line := range strings.Split(text, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// submittedForm tracks the files opened from a request so they can be closed.
type submittedForm struct {
	r     *http.Request
	files []multipart.File
}

// formError answers a submission that could not be parsed.
func (h *Handler) formError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, fmt.Sprintf("form exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "invalid form", http.StatusBadRequest)
}

// parseForm reads at most limit bytes of the request body.
func parseForm(w http.ResponseWriter, r *http.Request, limit int64) (*submittedForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var err error
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, err
	}
	return &submittedForm{r: r}, nil
}

// file returns the uploaded file of field, or nil when none was chosen.
func (f *submittedForm) file(field string) (*upload.File, error) {
	if f.r.MultipartForm == nil {
		return nil, nil
	}
	mf, header, err := f.r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.files = append(f.files, mf)
	if header.Filename == "" {
		return nil, nil
	}
	return &upload.File{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        mf,
	}, nil
}

// Close closes every opened file and removes temporary spill files.
func (f *submittedForm) Close() {
	for _, mf := range f.files {
		_ = mf.Close()
	}
	if f.r.MultipartForm != nil {
		_ = f.r.MultipartForm.RemoveAll()
	}
}
