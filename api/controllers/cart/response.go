package cart

import (
	cartengine "github.com/angelmondragon/cartvault/internal/cart"
	"github.com/angelmondragon/cartvault/internal/session"
)

type lineView struct {
	ID            string `json:"id"`
	ProductID     string `json:"productId"`
	Name          string `json:"name"`
	UnitPrice     string `json:"unitPrice"`
	Quantity      int    `json:"quantity"`
	Color         string `json:"color,omitempty"`
	Size          string `json:"size,omitempty"`
	PrintPosition string `json:"printPosition,omitempty"`
	Image         string `json:"image,omitempty"`
	Slug          string `json:"slug,omitempty"`
	CategorySlug  string `json:"categorySlug,omitempty"`
}

type stateView struct {
	Lines          []lineView `json:"lines"`
	Subtotal       string     `json:"subtotal"`
	TotalItemCount int        `json:"totalItemCount"`
	IsOpen         bool       `json:"isOpen"`
	IsReady        bool       `json:"isReady"`
}

type checkoutView struct {
	Lines          []lineView `json:"lines"`
	Subtotal       string     `json:"subtotal"`
	TotalItemCount int        `json:"totalItemCount"`
}

func newLineView(line cartengine.Line) lineView {
	return lineView{
		ID:            line.ID,
		ProductID:     line.ProductID,
		Name:          line.Name,
		UnitPrice:     line.UnitPrice.String(),
		Quantity:      line.Quantity,
		Color:         line.Color,
		Size:          line.Size,
		PrintPosition: line.PrintPosition,
		Image:         line.Image,
		Slug:          line.Slug,
		CategorySlug:  line.CategorySlug,
	}
}

func newStateView(state cartengine.State, ready bool) stateView {
	lines := make([]lineView, 0, len(state.Lines))
	for _, line := range state.Lines {
		lines = append(lines, newLineView(line))
	}
	return stateView{
		Lines:          lines,
		Subtotal:       state.Subtotal().String(),
		TotalItemCount: state.ItemCount(),
		IsOpen:         state.IsOpen,
		IsReady:        ready,
	}
}

func newCheckoutView(snapshot session.CheckoutSnapshot) checkoutView {
	lines := make([]lineView, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		lines = append(lines, newLineView(line))
	}
	return checkoutView{
		Lines:          lines,
		Subtotal:       snapshot.Subtotal.String(),
		TotalItemCount: snapshot.ItemCount,
	}
}
