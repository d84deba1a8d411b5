package template

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ID is an opaque, stable template identifier. IDs are assigned at creation
// time and never change afterwards.
type ID string

// Status controls whether a template participates in resolution.
type Status string

const (
	// StatusActive marks a template as eligible for resolution.
	StatusActive Status = "active"

	// StatusInactive keeps a template out of resolution entirely.
	// Newly created templates default to inactive.
	StatusInactive Status = "inactive"
)

// Operator adjusts a predicate result before aggregation.
type Operator string

const (
	// OperatorInclude uses the predicate result as-is.
	OperatorInclude Operator = "include"

	// OperatorExclude inverts the predicate result.
	OperatorExclude Operator = "exclude"
)

// Kind identifies a condition predicate. The predicate library maps each
// kind to a pure function over the RequestContext; an unknown kind always
// evaluates to false (fail-closed).
type Kind string

// Structural kinds compare the current view against the condition value.
// Toggle kinds (entire site, front page, search, ...) need no value.
const (
	KindEntireSite          Kind = "entire_site"
	KindFrontPage           Kind = "front_page"
	KindResourceType        Kind = "resource_type"
	KindPage                Kind = "page"
	KindSingle              Kind = "single"
	KindResource            Kind = "resource"
	KindCategory            Kind = "category"
	KindTag                 Kind = "tag"
	KindAuthor              Kind = "author"
	KindRole                Kind = "role"
	KindDateArchive         Kind = "date_archive"
	KindArchive             Kind = "archive"
	KindSearch              Kind = "search"
	KindNotFound            Kind = "not_found"
	KindAttachment          Kind = "attachment"
	KindPrivacyPolicy       Kind = "privacy_policy"
	KindTaxonomy            Kind = "taxonomy"
	KindResourceTypeArchive Kind = "resource_type_archive"
	KindParent              Kind = "parent"
	KindLayout              Kind = "layout"
	KindFormat              Kind = "format"
	KindPublicationStatus   Kind = "publication_status"
	KindCommentStatus       Kind = "comment_status"
	KindHasThumbnail        Kind = "has_thumbnail"
	KindMinWordCount        Kind = "min_word_count"
	KindMinAgeDays          Kind = "min_age_days"
)

// Contextual kinds derive signals from the visitor rather than the view.
const (
	KindMetadata   Kind = "metadata"
	KindQueryParam Kind = "query_param"
	KindDevice     Kind = "device"
	KindAuthState  Kind = "auth_state"
	KindBrowser    Kind = "browser"
	KindOS         Kind = "os"
	KindLocale     Kind = "locale"
	KindReferrer   Kind = "referrer"
	KindTimeAfter  Kind = "time_after"
)

// Storefront kinds are only evaluated when the commerce extension is
// present; without it they fail closed.
const (
	KindShop            Kind = "shop"
	KindProductCategory Kind = "product_category"
	KindProductTag      Kind = "product_tag"
	KindCart            Kind = "cart"
	KindCheckout        Kind = "checkout"
	KindAccount         Kind = "account"
	KindCustomerStatus  Kind = "customer_status"
)

// Slot marker kinds carry no predicate; they exist so authors can tag a
// template as belonging to a layout slot, which the classifier picks up.
const (
	KindHeaderSlot Kind = "header"
	KindFooterSlot Kind = "footer"
)

// Category classifies how a matched template composes into the page.
type Category string

const (
	// CategoryHeader injects the template body into the header slot.
	CategoryHeader Category = "header"

	// CategoryFooter injects the template body into the footer slot.
	CategoryFooter Category = "footer"

	// CategoryFullPage replaces the entire document, host layout included.
	CategoryFullPage Category = "full_page"

	// CategoryContent substitutes only the primary body content; the
	// surrounding layout renders normally and may pick up separately
	// resolved header/footer templates.
	CategoryContent Category = "content"

	// CategoryNone means no template applies; the host renders as usual.
	CategoryNone Category = "none"
)

// Valid reports whether c is one of the four composable categories.
// CategoryNone is a decision outcome, not an authorable category.
func (c Category) Valid() bool {
	switch c {
	case CategoryHeader, CategoryFooter, CategoryFullPage, CategoryContent:
		return true
	}
	return false
}

// Condition is a single typed predicate attached to a template.
//
// Value is treated as an opaque string here; the predicate for the kind
// parses it (identifier, free string, key=value pair, or enumerated token).
// A condition with an empty kind is invalid: it is skipped during
// evaluation and dropped on save.
type Condition struct {
	Kind     Kind     `yaml:"kind" json:"kind"`
	Operator Operator `yaml:"operator,omitempty" json:"operator,omitempty"`
	Value    string   `yaml:"value,omitempty" json:"value,omitempty"`
}

// Valid reports whether the condition has a kind and can be evaluated.
func (c Condition) Valid() bool {
	return c.Kind != ""
}

// Template is a content unit with a body and display conditions.
type Template struct {
	// ID uniquely identifies the template. Assigned at creation, immutable.
	ID ID `yaml:"id" json:"id"`

	// Title is the display label. It doubles as a weak classification
	// signal: titles containing "header" or "footer" steer the classifier.
	Title string `yaml:"title" json:"title"`

	// Body is the opaque content payload. The engine only forwards it;
	// rendering is the host's concern.
	Body string `yaml:"body,omitempty" json:"body,omitempty"`

	// Status gates participation in resolution.
	Status Status `yaml:"status" json:"status"`

	// Category, when set by the author, overrides heuristic
	// classification. Empty means classify from title and conditions.
	Category Category `yaml:"category,omitempty" json:"category,omitempty"`

	// Conditions decide where the template applies. Order within the list
	// does not affect matching (OR semantics); selection priority across
	// templates comes from repository order.
	Conditions []Condition `yaml:"conditions,omitempty" json:"conditions,omitempty"`

	CreatedAt time.Time `yaml:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Active reports whether the template participates in resolution.
func (t *Template) Active() bool {
	return t != nil && t.Status == StatusActive
}

// Decision is the sole output of a resolution pass: which template applies
// (if any) and how it should be composed into the page.
type Decision struct {
	TemplateID ID       `json:"template_id,omitempty"`
	Category   Category `json:"category"`
}

// NoMatch is the decision returned when no template applies.
func NoMatch() Decision {
	return Decision{Category: CategoryNone}
}

// Matched reports whether the decision selected a template.
func (d Decision) Matched() bool {
	return d.TemplateID != "" && d.Category != CategoryNone
}

// RequestContext is the ambient, read-only description of the current
// request: the resource being viewed, the visitor, and derived signals.
// The engine never mutates it. Structural fields are populated by the host
// (it knows what the route resolved to); visitor fields can be derived from
// the raw HTTP request via stencil-hq/atrium/pkg/webctx.
type RequestContext struct {
	// Resource identity for singular views.
	ResourceID   string `json:"resource_id,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`

	// View flags.
	IsSingular      bool `json:"is_singular,omitempty"`
	IsPage          bool `json:"is_page,omitempty"`
	IsAttachment    bool `json:"is_attachment,omitempty"`
	IsPrivacyPolicy bool `json:"is_privacy_policy,omitempty"`
	IsFrontPage     bool `json:"is_front_page,omitempty"`
	IsArchive       bool `json:"is_archive,omitempty"`
	IsSearch        bool `json:"is_search,omitempty"`
	IsNotFound      bool `json:"is_not_found,omitempty"`

	// Archive descriptors, set only on the corresponding archive views.
	ArchiveTaxonomy    string `json:"archive_taxonomy,omitempty"`
	ArchiveTerm        string `json:"archive_term,omitempty"`
	ArchiveAuthor      string `json:"archive_author,omitempty"`
	DateArchive        string `json:"date_archive,omitempty"` // "year", "month", "day"
	ArchiveResourceType string `json:"archive_resource_type,omitempty"`

	// Resource detail for singular views.
	Terms             map[string][]string `json:"terms,omitempty"` // taxonomy -> attached terms
	Metadata          map[string]string   `json:"metadata,omitempty"`
	LayoutSlug        string              `json:"layout_slug,omitempty"`
	Format            string              `json:"format,omitempty"`
	ParentID          string              `json:"parent_id,omitempty"`
	PublicationStatus string              `json:"publication_status,omitempty"`
	CommentsOpen      bool                `json:"comments_open,omitempty"`
	HasThumbnail      bool                `json:"has_thumbnail,omitempty"`
	WordCount         int                 `json:"word_count,omitempty"`
	PublishedAt       time.Time           `json:"published_at,omitempty"`

	// Visitor signals.
	SignedIn    bool       `json:"signed_in,omitempty"`
	Roles       []string   `json:"roles,omitempty"`
	UserAgent   string     `json:"user_agent,omitempty"`
	Locale      string     `json:"locale,omitempty"`
	Referrer    string     `json:"referrer,omitempty"`
	QueryParams url.Values `json:"query_params,omitempty"`
	Now         time.Time  `json:"now,omitempty"`

	// Storefront signals, populated only when the commerce extension is
	// present on the host.
	IsShop             bool `json:"is_shop,omitempty"`
	IsProduct          bool `json:"is_product,omitempty"`
	IsCart             bool `json:"is_cart,omitempty"`
	IsCheckout         bool `json:"is_checkout,omitempty"`
	IsAccount          bool `json:"is_account,omitempty"`
	CustomerOrderCount int  `json:"customer_order_count,omitempty"`
}

// HasTerm reports whether the current singular resource carries the given
// term under the given taxonomy.
func (rc *RequestContext) HasTerm(taxonomy, term string) bool {
	if rc == nil || rc.Terms == nil {
		return false
	}
	for _, t := range rc.Terms[taxonomy] {
		if t == term {
			return true
		}
	}
	return false
}

// HasRole reports whether the signed-in visitor holds the given role.
func (rc *RequestContext) HasRole(role string) bool {
	if rc == nil || !rc.SignedIn {
		return false
	}
	for _, r := range rc.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Meta returns the metadata value for key on the current resource, or ""
// when absent.
func (rc *RequestContext) Meta(key string) string {
	if rc == nil || rc.Metadata == nil {
		return ""
	}
	return rc.Metadata[key]
}

// Timestamp returns the request time, falling back to the wall clock when
// the context carries none.
func (rc *RequestContext) Timestamp() time.Time {
	if rc != nil && !rc.Now.IsZero() {
		return rc.Now
	}
	return time.Now()
}

// Fingerprint returns a stable digest over every context field a predicate
// can read, so two requests with the same fingerprint resolve identically
// and the fingerprint can key a decision cache. Now is the one exception:
// folding the clock in would defeat caching, so a time_after condition may
// flip one cache TTL late.
func (rc *RequestContext) Fingerprint() string {
	if rc == nil {
		return "none"
	}
	flag := func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	}

	parts := make([]string, 0, 16)
	parts = append(parts,
		"view:"+flag(rc.IsFrontPage)+flag(rc.IsSearch)+flag(rc.IsNotFound)+
			flag(rc.IsSingular)+flag(rc.IsPage)+flag(rc.IsAttachment)+
			flag(rc.IsPrivacyPolicy)+flag(rc.IsArchive),
		"resource:"+rc.ResourceType+":"+rc.ResourceID,
	)
	if rc.IsArchive {
		parts = append(parts, "archive:"+rc.ArchiveTaxonomy+":"+rc.ArchiveTerm+":"+
			rc.ArchiveAuthor+":"+rc.DateArchive+":"+rc.ArchiveResourceType)
	}
	if len(rc.Terms) > 0 {
		parts = append(parts, "terms:"+sortedMultiMap(rc.Terms))
	}
	if len(rc.Metadata) > 0 {
		parts = append(parts, "meta:"+sortedMap(rc.Metadata))
	}
	if rc.LayoutSlug != "" {
		parts = append(parts, "layout:"+rc.LayoutSlug)
	}
	if rc.Format != "" {
		parts = append(parts, "format:"+rc.Format)
	}
	if rc.ParentID != "" {
		parts = append(parts, "parent:"+rc.ParentID)
	}
	if rc.PublicationStatus != "" {
		parts = append(parts, "pub:"+rc.PublicationStatus)
	}
	if rc.CommentsOpen {
		parts = append(parts, "comments_open")
	}
	if rc.HasThumbnail {
		parts = append(parts, "thumbnail")
	}
	if rc.WordCount > 0 {
		parts = append(parts, "words:"+strconv.Itoa(rc.WordCount))
	}
	if !rc.PublishedAt.IsZero() {
		parts = append(parts, "published:"+strconv.FormatInt(rc.PublishedAt.UnixNano(), 10))
	}
	if rc.SignedIn {
		parts = append(parts, "roles:"+strings.Join(rc.Roles, ","))
	}
	if rc.UserAgent != "" {
		parts = append(parts, "ua:"+rc.UserAgent)
	}
	if rc.Locale != "" {
		parts = append(parts, "locale:"+rc.Locale)
	}
	if rc.Referrer != "" {
		parts = append(parts, "referrer:"+rc.Referrer)
	}
	if len(rc.QueryParams) > 0 {
		parts = append(parts, "query:"+rc.QueryParams.Encode())
	}
	storefront := flag(rc.IsShop) + flag(rc.IsProduct) + flag(rc.IsCart) +
		flag(rc.IsCheckout) + flag(rc.IsAccount)
	if storefront != "00000" || rc.CustomerOrderCount > 0 {
		parts = append(parts, "commerce:"+storefront+":"+strconv.Itoa(rc.CustomerOrderCount))
	}
	return hashParts(parts)
}
