package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/services"
)

func stripeError(c *gin.Context, op string, err error) {
	log.Printf("Stripe %s error: %v", op, err)
	if unavailable(err) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + op, "details": err.Error()})
}

func stripeBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// --- Customers ---

func (h *Handler) CreateCustomer(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Email == "" || req.Name == "" {
		stripeBadRequest(c, "Email and name are required")
		return
	}

	customer, err := h.Billing.CreateCustomer(c.Request.Context(), req.Email, req.Name, req.Phone)
	if err != nil {
		stripeError(c, "create customer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "customer": customer})
}

func (h *Handler) GetCustomer(c *gin.Context) {
	customer, err := h.Billing.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		stripeError(c, "get customer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "customer": customer})
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	customer, err := h.Billing.DeleteCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		stripeError(c, "delete customer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "customer": customer})
}

func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.Billing.ListCustomers(c.Request.Context())
	if err != nil {
		stripeError(c, "list customers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "customers": customers})
}

// --- Payment methods ---

func (h *Handler) CreatePaymentMethod(c *gin.Context) {
	var req struct {
		Type string              `json:"type"`
		Card *services.CardInput `json:"card"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Type == "" || req.Card == nil {
		stripeBadRequest(c, "Type and card data are required")
		return
	}

	pm, err := h.Billing.CreatePaymentMethod(c.Request.Context(), req.Type, *req.Card)
	if err != nil {
		stripeError(c, "create payment method", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "paymentMethod": pm})
}

func (h *Handler) AttachPaymentMethod(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		stripeBadRequest(c, "Payment method ID is required")
		return
	}
	var req struct {
		Customer string `json:"customer"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Customer == "" {
		stripeBadRequest(c, "Customer ID is required")
		return
	}

	pm, err := h.Billing.AttachPaymentMethod(c.Request.Context(), id, req.Customer)
	if err != nil {
		stripeError(c, "attach payment method", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "paymentMethod": pm})
}

func (h *Handler) ListPaymentMethods(c *gin.Context) {
	customer := c.Query("customer")
	if customer == "" {
		stripeBadRequest(c, "Customer ID is required")
		return
	}
	methods, err := h.Billing.CustomerPaymentMethods(c.Request.Context(), customer)
	if err != nil {
		stripeError(c, "get payment methods", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "paymentMethods": methods})
}

// --- Checkout ---

func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var in services.CheckoutInput
	if !bindJSON(c, &in) {
		return
	}
	if in.Customer == "" || in.PriceID == "" || in.SuccessURL == "" || in.CancelURL == "" {
		stripeBadRequest(c, "Customer, price_id, success_url, and cancel_url are required")
		return
	}

	session, err := h.Billing.CreateCheckoutSession(c.Request.Context(), in)
	if err != nil {
		stripeError(c, "create checkout session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

func (h *Handler) GetCheckoutSession(c *gin.Context) {
	session, err := h.Billing.GetCheckoutSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		stripeError(c, "get checkout session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

func (h *Handler) ListCheckoutSessions(c *gin.Context) {
	customer := c.Query("customer")
	if customer == "" {
		stripeBadRequest(c, "Customer ID is required")
		return
	}
	sessions, err := h.Billing.CustomerCheckoutSessions(c.Request.Context(), customer)
	if err != nil {
		stripeError(c, "get checkout sessions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sessions": sessions})
}

// --- Products and prices ---

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.Billing.Products(c.Request.Context())
	if err != nil {
		stripeError(c, "get products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req struct {
		Name        string            `json:"name"`
		Description string            `json:"description"`
		Metadata    map[string]string `json:"metadata"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Name == "" {
		stripeBadRequest(c, "Product name is required")
		return
	}

	product, err := h.Billing.CreateProduct(c.Request.Context(), req.Name, req.Description, req.Metadata)
	if err != nil {
		stripeError(c, "create product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

func (h *Handler) ListPrices(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		stripeBadRequest(c, "Product ID is required")
		return
	}
	prices, err := h.Billing.ProductPrices(c.Request.Context(), productID)
	if err != nil {
		stripeError(c, "get product prices", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "prices": prices})
}

// --- Metered usage ---

func (h *Handler) ReportUsage(c *gin.Context) {
	var req struct {
		Quantity  int64 `json:"quantity"`
		Timestamp int64 `json:"timestamp"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity == 0 {
		stripeBadRequest(c, "Quantity is required")
		return
	}

	record, err := h.Billing.ReportUsage(c.Request.Context(), c.Param("id"), req.Quantity, req.Timestamp)
	if err != nil {
		stripeError(c, "report usage", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "usageRecord": record})
}

// UsageSummary reads ?start= and ?end= as unix seconds, RFC3339 or YYYY-MM-DD.
func (h *Handler) UsageSummary(c *gin.Context) {
	start, okStart := parseUnix(c.Query("start"))
	end, okEnd := parseUnix(c.Query("end"))
	if c.Param("id") == "" || !okStart || !okEnd {
		stripeBadRequest(c, "Subscription item ID, start, and end dates are required")
		return
	}

	summary, err := h.Billing.UsageSummary(c.Request.Context(), c.Param("id"), start, end)
	if err != nil {
		stripeError(c, "get usage summary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

func parseUnix(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}
