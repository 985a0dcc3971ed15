package models

// Analytics event names
const (
	EventViewContent      = "view_content"
	EventSearchExecuted   = "search_executed"
	EventAddToCart        = "add_to_cart"
	EventCheckoutStart    = "checkout_start"
	EventCheckoutProgress = "checkout_progress"
	EventPurchase         = "purchase"
)

const Currency = "USD"
