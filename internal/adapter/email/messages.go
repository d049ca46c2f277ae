package email

import (
	"fmt"
	"strings"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
)

// Message is a rendered email ready for the sender.
type Message struct {
	Subject  string
	BodyHTML string
	BodyText string
}

func WelcomeMessage(name string) Message {
	return Message{
		Subject: "Welcome to Shree Supply",
		BodyHTML: fmt.Sprintf(
			"<h2>Welcome, %s!</h2><p>Your account has been created. Browse our catalog of hotel and restaurant supplies and place your first order.</p>",
			name),
		BodyText: fmt.Sprintf("Welcome, %s! Your account has been created.", name),
	}
}

func PasswordResetMessage(name, resetURL string) Message {
	return Message{
		Subject: "Password Reset Request",
		BodyHTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>You requested a password reset. Click the link below to choose a new password. The link expires in 15 minutes.</p><p><a href=%q>Reset password</a></p><p>If you did not request this, you can ignore this email.</p>",
			name, resetURL),
		BodyText: fmt.Sprintf("Hi %s,\n\nYou requested a password reset. Open this link to choose a new password (expires in 15 minutes):\n%s\n\nIf you did not request this, ignore this email.", name, resetURL),
	}
}

func OrderConfirmationMessage(name string, order *entity.Order) Message {
	var itemsHTML strings.Builder
	var itemsText strings.Builder
	for _, it := range order.Items {
		fmt.Fprintf(&itemsHTML, "<tr><td>%s</td><td>%d</td><td>%.2f</td></tr>", it.Name, it.Quantity, it.Price)
		fmt.Fprintf(&itemsText, "- %s x%d @ %.2f\n", it.Name, it.Quantity, it.Price)
	}

	html := fmt.Sprintf(
		"<h2>Thank you for your order, %s!</h2>"+
			"<p>Order <strong>%s</strong> has been placed.</p>"+
			"<table border=\"1\" cellpadding=\"4\"><tr><th>Item</th><th>Qty</th><th>Price</th></tr>%s</table>"+
			"<p>Items: %.2f<br>Tax: %.2f<br>Shipping: %.2f<br><strong>Total: %.2f</strong></p>",
		name, order.OrderNumber, itemsHTML.String(),
		order.ItemsPrice, order.TaxPrice, order.ShippingPrice, order.TotalPrice)

	text := fmt.Sprintf(
		"Thank you for your order, %s!\n\nOrder %s has been placed.\n\n%s\nItems: %.2f\nTax: %.2f\nShipping: %.2f\nTotal: %.2f\n",
		name, order.OrderNumber, itemsText.String(),
		order.ItemsPrice, order.TaxPrice, order.ShippingPrice, order.TotalPrice)

	return Message{
		Subject:  fmt.Sprintf("Order Confirmation - %s", order.OrderNumber),
		BodyHTML: html,
		BodyText: text,
	}
}

func OrderStatusMessage(name string, order *entity.Order) Message {
	line := statusLine(order)
	return Message{
		Subject: fmt.Sprintf("Order %s - %s", order.OrderNumber, capitalize(string(order.Status))),
		BodyHTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>%s</p><p>Order number: <strong>%s</strong></p>",
			name, line, order.OrderNumber),
		BodyText: fmt.Sprintf("Hi %s,\n\n%s\nOrder number: %s\n", name, line, order.OrderNumber),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func statusLine(order *entity.Order) string {
	switch order.Status {
	case entity.OrderProcessing:
		return "Your order is being processed."
	case entity.OrderPacked:
		return "Your order has been packed and will ship soon."
	case entity.OrderShipped:
		if order.TrackingNumber != "" {
			return fmt.Sprintf("Your order has shipped via %s. Tracking number: %s.", order.CourierName, order.TrackingNumber)
		}
		return "Your order has shipped."
	case entity.OrderDelivered:
		return "Your order has been delivered. Thank you for shopping with us!"
	case entity.OrderCancelled:
		return "Your order has been cancelled."
	case entity.OrderReturned:
		return "Your return has been recorded."
	default:
		return fmt.Sprintf("Your order status is now %s.", order.Status)
	}
}
