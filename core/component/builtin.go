package component

import "github.com/arraypress/flyouts/domain/panel"

// Component categories.
const (
	CategoryInput   = "input"
	CategoryChoice  = "choice"
	CategoryDisplay = "display"
	CategoryMedia   = "media"
	CategoryActions = "actions"
	CategoryData    = "data"
	CategoryLayout  = "layout"
)

// PriceFields is the composite data shape of the price component.
var PriceFields = []string{
	"amount",
	"compare_at_amount",
	"currency",
	"recurring_interval",
	"recurring_interval_count",
}

// builtins are the descriptors registered by NewRegistry.
var builtins = []Descriptor{
	{Type: panel.TypeText, Renderer: "render_text", Category: CategoryInput},
	{Type: panel.TypeTextarea, Renderer: "render_textarea", Category: CategoryInput},
	{Type: panel.TypeNumber, Renderer: "render_number", Category: CategoryInput},
	{Type: panel.TypeDate, Renderer: "render_date", Asset: "flyout-pickers", Category: CategoryInput},
	{Type: panel.TypeToggle, Renderer: "render_toggle", Category: CategoryChoice},
	{Type: panel.TypeSelect, Renderer: "render_select", Category: CategoryChoice},
	{Type: panel.TypeSearchSelect, Renderer: "render_search_select", Asset: "flyout-search", Category: CategoryChoice},
	{Type: panel.TypePrice, Renderer: "render_price", Fields: PriceFields, Asset: "flyout-price", Category: CategoryInput},
	{Type: panel.TypeLineItems, Renderer: "render_line_items", Fields: []string{"items"}, Asset: "flyout-line-items", Category: CategoryData},
	{Type: panel.TypeKeyValue, Renderer: "render_key_value", Fields: []string{"rows"}, Asset: "flyout-repeater", Category: CategoryData},
	{Type: panel.TypeList, Renderer: "render_list", Asset: "flyout-repeater", Category: CategoryData},
	{Type: panel.TypeImage, Renderer: "render_image", Asset: "flyout-media", Category: CategoryMedia},
	{Type: panel.TypeGallery, Renderer: "render_gallery", Fields: []string{"ids"}, Asset: "flyout-media", Category: CategoryMedia},
	{Type: panel.TypeNotes, Renderer: "render_notes", Fields: []string{"notes"}, Asset: "flyout-notes", Category: CategoryData},
	{Type: panel.TypeButtonGroup, Renderer: "render_button_group", Category: CategoryActions},
	{Type: panel.TypeActionMenu, Renderer: "render_action_menu", Asset: "flyout-menu", Category: CategoryActions},
	{Type: panel.TypeHeader, Renderer: "render_header", Fields: []string{"title", "subtitle", "media"}, Asset: "flyout-media", Category: CategoryDisplay},
	{Type: panel.TypeLink, Renderer: "render_link", Category: CategoryDisplay},
	{Type: panel.TypeHTML, Renderer: "render_html", Category: CategoryDisplay},
	{Type: panel.TypeDivider, Renderer: "render_divider", Category: CategoryLayout},
}
