package orderControllers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/ChauShunWai/node-shop/models"
)

// Invoice is the printable projection of an order. The total is recomputed
// from the snapshot lines; a stored total field is never trusted here.
type Invoice struct {
	OrderID    uint
	BuyerEmail string
	Lines      []models.OrderLine
	Total      float64
}

func BuildInvoice(order models.Order) Invoice {
	var total float64
	for _, line := range order.Lines {
		total += float64(line.Quantity) * line.Price
	}
	return Invoice{
		OrderID:    order.ID,
		BuyerEmail: order.BuyerEmail,
		Lines:      order.Lines,
		Total:      total,
	}
}

// RenderInvoicePDF writes the invoice as a single-column A4 PDF.
func RenderInvoicePDF(inv Invoice, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 30)
	pdf.CellFormat(0, 14, "INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "BU", 24)
	pdf.CellFormat(0, 12, fmt.Sprintf("Order - #%d", inv.OrderID), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, "Buyer Email: "+inv.BuyerEmail, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range inv.Lines {
		pdf.CellFormat(0, 7, fmt.Sprintf("%s - $ %.2f x %d", line.Title, line.Price, line.Quantity),
			"", 1, "L", false, 0, "")
		pdf.MultiCell(0, 6, "Product Description: "+line.Description, "", "L", false)
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Total Price: $ %.2f", inv.Total), "", 1, "L", false, 0, "")

	return pdf.Output(w)
}

// GET /orders/:orderID/invoice
func GetInvoiceHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := loadOwnedOrder(c, db)
		if !ok {
			return
		}

		inv := BuildInvoice(order)
		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", fmt.Sprintf("invoice-%d.pdf", inv.OrderID)))
		if err := RenderInvoicePDF(inv, c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render invoice"})
			return
		}
	}
}
