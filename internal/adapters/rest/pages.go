package rest

import (
	"errors"
	"fmt"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/domain"
	"listing-web/internal/core/port"
	"listing-web/internal/core/port/usecases_port"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const subscribeSource = "landing"

// коды ошибок подписки в query-параметре subscribe_error
var subscribeErrorMessages = map[string]string{
	"invalid":  "Please enter a valid email address.",
	"disabled": "Subscriptions are temporarily unavailable.",
	"failed":   "Could not subscribe right now. Please try again later.",
}

// PagesHandler - HTML-страницы: лендинг, подписка и список объектов
type PagesHandler struct {
	sessions  usecases_port.ListingSessionsUseCase
	panel     usecases_port.SearchPanelUseCase
	cards     usecases_port.RenderCardsUseCase
	subscribe usecases_port.SubscribeUseCase
	templates pageTemplates
}

func NewPagesHandler(
	sessions usecases_port.ListingSessionsUseCase,
	panel usecases_port.SearchPanelUseCase,
	cards usecases_port.RenderCardsUseCase,
	subscribe usecases_port.SubscribeUseCase,
) (*PagesHandler, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &PagesHandler{
		sessions:  sessions,
		panel:     panel,
		cards:     cards,
		subscribe: subscribe,
		templates: templates,
	}, nil
}

type layoutData struct {
	Brand       string
	Title       string
	Nav         string
	AutoRefresh bool
}

type landingPage struct {
	layoutData
	Subscribed     bool
	SubscribeError string
}

type panelForm struct {
	Query    string
	MinPrice string
	MaxPrice string
	Location string
}

type typeOption struct {
	Value    string
	Label    string
	Selected bool
}

type propertiesPage struct {
	layoutData
	View          domain.ListingView
	Cards         []domain.PropertyCard
	Panel         panelForm
	PropertyTypes []typeOption
	PageLabel     string
	FormError     string
}

// Landing - GET /
func (h *PagesHandler) Landing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := landingPage{
		layoutData:     layoutData{Brand: Brand, Title: "Home", Nav: "home"},
		Subscribed:     q.Get("subscribed") == "1",
		SubscribeError: subscribeErrorMessages[q.Get("subscribe_error")],
	}
	h.renderPage(w, r, http.StatusOK, "landing", data)
}

// Subscribe - POST /subscribe, результат показывается на лендинге после редиректа
func (h *PagesHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/?subscribe_error=invalid#subscribe", http.StatusSeeOther)
		return
	}

	_, err := h.subscribe.Execute(r.Context(), r.PostFormValue("email"), subscribeSource)
	switch {
	case err == nil:
		http.Redirect(w, r, "/?subscribed=1#subscribe", http.StatusSeeOther)
	case errors.Is(err, domain.ErrInvalidEmail):
		http.Redirect(w, r, "/?subscribe_error=invalid#subscribe", http.StatusSeeOther)
	case errors.Is(err, domain.ErrSubscriptionsDisabled):
		http.Redirect(w, r, "/?subscribe_error=disabled#subscribe", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/?subscribe_error=failed#subscribe", http.StatusSeeOther)
	}
}

// Properties - GET /properties. Первое посещение запускает загрузку;
// параметры search и page позволяют открыть конкретную выдачу по ссылке.
func (h *PagesHandler) Properties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	coordinator := h.sessions.Get(sessionID(w, r))
	view := coordinator.View()

	q := r.URL.Query()
	query := view.Query
	if q.Has("search") {
		query = strings.TrimSpace(q.Get("search"))
	}
	page, hasPage := parsePage(q.Get("page"))

	switch {
	case query != view.Query || (hasPage && page != view.Pagination.CurrentPage):
		// поиск и страница из ссылки применяются одним запросом
		view, _ = coordinator.Open(ctx, query, page)
	case !view.Loaded && !view.Loading:
		// первая загрузка или повтор после неудачной первой загрузки
		view, _ = coordinator.Refresh(ctx)
	}

	h.renderProperties(w, r, http.StatusOK, view, "", nil)
}

// SearchAction - POST /properties/search, кнопка "Search"
func (h *PagesHandler) SearchAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}
	coordinator := h.sessions.Get(sessionID(w, r))
	_, _ = h.panel.SubmitSearch(r.Context(), coordinator, panelInput(r))
	http.Redirect(w, r, "/properties", http.StatusSeeOther)
}

// FiltersAction - POST /properties/filters, кнопка "Apply Filters".
// Некорректные фильтры показываются на странице без запроса к API.
func (h *PagesHandler) FiltersAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}
	coordinator := h.sessions.Get(sessionID(w, r))
	input := panelInput(r)

	view, err := h.panel.ApplyFilters(r.Context(), coordinator, input)
	if errors.Is(err, domain.ErrInvalidFilters) {
		h.renderProperties(w, r, http.StatusUnprocessableEntity, view, formErrorMessage(err), &input)
		return
	}
	http.Redirect(w, r, "/properties", http.StatusSeeOther)
}

// PageAction - POST /properties/page: dir=next|prev или page=<n>
func (h *PagesHandler) PageAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}
	ctx := r.Context()
	coordinator := h.sessions.Get(sessionID(w, r))

	switch dir := r.PostFormValue("dir"); {
	case dir == "next":
		_, _ = coordinator.NextPage(ctx)
	case dir == "prev":
		_, _ = coordinator.PreviousPage(ctx)
	case r.PostFormValue("page") != "":
		page, ok := parsePage(r.PostFormValue("page"))
		if !ok {
			WriteJSONError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		_, _ = coordinator.GoToPage(ctx, page)
	default:
		WriteJSONError(w, http.StatusBadRequest, "dir or page is required")
		return
	}
	http.Redirect(w, r, "/properties", http.StatusSeeOther)
}

func (h *PagesHandler) renderProperties(w http.ResponseWriter, r *http.Request, status int, view domain.ListingView, formError string, input *domain.PanelInput) {
	form := panelFromView(view)
	selectedType := string(view.Filters.Subtype)
	if input != nil {
		// показываем то, что ввел пользователь, а не последние примененные фильтры
		form = panelForm{
			Query:    input.Query,
			MinPrice: input.MinPrice,
			MaxPrice: input.MaxPrice,
			Location: input.Location,
		}
		selectedType = input.PropertyType
	}

	data := propertiesPage{
		layoutData: layoutData{
			Brand:       Brand,
			Title:       "Properties",
			Nav:         "properties",
			AutoRefresh: view.Loading,
		},
		View:          view,
		Cards:         h.cards.Execute(view.Properties),
		Panel:         form,
		PropertyTypes: typeOptions(selectedType),
		PageLabel:     fmt.Sprintf("Page %d of %d", view.Pagination.CurrentPage, view.Pagination.TotalPages),
		FormError:     formError,
	}
	h.renderPage(w, r, status, "properties", data)
}

func (h *PagesHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	if err := h.templates.render(w, status, name, data); err != nil {
		contextkeys.LoggerFromContext(r.Context()).Error("Failed to render page", err, port.Fields{"page": name})
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func panelInput(r *http.Request) domain.PanelInput {
	return domain.PanelInput{
		Query:        r.PostFormValue("search"),
		MinPrice:     r.PostFormValue("minPrice"),
		MaxPrice:     r.PostFormValue("maxPrice"),
		PropertyType: r.PostFormValue("propertyType"),
		Location:     r.PostFormValue("location"),
	}
}

func panelFromView(view domain.ListingView) panelForm {
	form := panelForm{Query: view.Query, Location: view.Filters.Location}
	if view.Filters.MinPrice != nil {
		form.MinPrice = strconv.FormatFloat(*view.Filters.MinPrice, 'f', -1, 64)
	}
	if view.Filters.MaxPrice != nil {
		form.MaxPrice = strconv.FormatFloat(*view.Filters.MaxPrice, 'f', -1, 64)
	}
	return form
}

func typeOptions(selected string) []typeOption {
	selected = strings.ToLower(strings.TrimSpace(selected))
	caser := cases.Title(language.English)
	options := make([]typeOption, 0, len(domain.PropertySubtypes))
	for _, t := range domain.PropertySubtypes {
		options = append(options, typeOption{
			Value:    string(t),
			Label:    caser.String(string(t)),
			Selected: string(t) == selected,
		})
	}
	return options
}

// formErrorMessage убирает префикс sentinel-ошибки для показа пользователю
func formErrorMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidFilters.Error()+": ")
	if msg == "" {
		return "Invalid filters."
	}
	return "Invalid filters: " + msg + "."
}
