package document

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// HTMLRenderer renders documents as standalone HTML fragments.
type HTMLRenderer struct {
	depositTmpl     *template.Template
	invoiceTmpl     *template.Template
	certificateTmpl *template.Template
	contractTmpl    *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	funcs := template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("EUR %.2f", v) },
		"join":  func(s []string) string { return strings.Join(s, ", ") },
	}
	return &HTMLRenderer{
		depositTmpl:     template.Must(template.New("deposit").Funcs(funcs).Parse(depositTemplate)),
		invoiceTmpl:     template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceTemplate)),
		certificateTmpl: template.Must(template.New("certificate").Funcs(funcs).Parse(certificateTemplate)),
		contractTmpl:    template.Must(template.New("contract").Funcs(funcs).Parse(contractTemplate)),
	}
}

type depositData struct {
	Atelier Atelier
	Doc     DepositReceipt
}

type invoiceData struct {
	Atelier Atelier
	Doc     Invoice
}

type certificateData struct {
	Atelier Atelier
	Doc     Certificate
}

type contractData struct {
	Atelier Atelier
	Doc     Contract
}

func (r *HTMLRenderer) RenderDepositReceipt(atelier Atelier, receipt DepositReceipt) (string, error) {
	return render(r.depositTmpl, depositData{Atelier: atelier, Doc: receipt})
}

func (r *HTMLRenderer) RenderInvoice(atelier Atelier, invoice Invoice) (string, error) {
	return render(r.invoiceTmpl, invoiceData{Atelier: atelier, Doc: invoice})
}

func (r *HTMLRenderer) RenderCertificate(atelier Atelier, cert Certificate) (string, error) {
	return render(r.certificateTmpl, certificateData{Atelier: atelier, Doc: cert})
}

func (r *HTMLRenderer) RenderContract(atelier Atelier, contract Contract) (string, error) {
	return render(r.contractTmpl, contractData{Atelier: atelier, Doc: contract})
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return buf.String(), nil
}

const depositTemplate = `<div class="document deposit-receipt">
  <h1>{{.Atelier.Name}}</h1>
  <p class="address">{{.Atelier.Address}}</p>
  <h2>Deposit Payment Instruction</h2>
  <p>Reference: <strong>{{.Doc.Reference}}</strong></p>
  <p>Date: {{.Doc.IssuedAt.Format "02 Jan 2006"}}</p>
  <table>
    <tr><td>Client</td><td>{{.Doc.BuyerName}} ({{.Doc.BuyerEmail}})</td></tr>
    <tr><td>Piece</td><td>{{.Doc.PieceTitle}}</td></tr>
    <tr><td>Serial Number</td><td>{{.Doc.SerialNumber}}</td></tr>
    <tr><td>Total Price</td><td>{{money .Doc.TotalPrice}}</td></tr>
    <tr><td>Deposit Due ({{.Doc.DepositPercent}}%)</td><td><strong>{{money .Doc.DepositAmount}}</strong></td></tr>
  </table>
  <h3>Bank Transfer Details</h3>
  <p>Beneficiary: {{.Atelier.Name}}</p>
  <p>IBAN: {{.Atelier.BankIBAN}}</p>
  <p>Payment Reference: {{.Doc.Reference}}</p>
  <p class="signature">{{.Atelier.Director}}, Director</p>
</div>`

const invoiceTemplate = `<div class="document invoice">
  <h1>{{.Atelier.Name}}</h1>
  <p class="address">{{.Atelier.Address}}</p>
  <h2>Final Invoice</h2>
  <p>Invoice Number: <strong>{{.Doc.Reference}}</strong></p>
  <p>Deposit Reference: {{.Doc.DepositRef}}</p>
  <p>Date: {{.Doc.IssuedAt.Format "02 Jan 2006"}}</p>
  <table>
    <tr><td>Client</td><td>{{.Doc.BuyerName}} ({{.Doc.BuyerEmail}})</td></tr>
    <tr><td>Piece</td><td>{{.Doc.PieceTitle}}</td></tr>
    <tr><td>Serial Number</td><td>{{.Doc.SerialNumber}}</td></tr>
    <tr><td>Total Price</td><td>{{money .Doc.TotalPrice}}</td></tr>
    <tr><td>Deposit Received</td><td>{{money .Doc.DepositPaid}}</td></tr>
    <tr><td>Balance Due</td><td><strong>{{money .Doc.RemainingAmount}}</strong></td></tr>
  </table>
  <h3>Bank Transfer Details</h3>
  <p>Beneficiary: {{.Atelier.Name}}</p>
  <p>IBAN: {{.Atelier.BankIBAN}}</p>
  <p>Payment Reference: {{.Doc.Reference}}</p>
</div>`

const certificateTemplate = `<div class="document certificate">
  <h1>{{.Atelier.Name}}</h1>
  <h2>Certificate of Authenticity</h2>
  <p>Certificate Number: <strong>{{.Doc.Number}}</strong></p>
  <p>This certifies that the masterpiece described below is an authentic
  work of {{.Atelier.Name}}, created under the direction of {{.Atelier.Director}}.</p>
  <table>
    <tr><td>Title</td><td>{{.Doc.PieceTitle}}</td></tr>
    <tr><td>Serial Number</td><td>{{.Doc.SerialNumber}}</td></tr>
    <tr><td>Edition</td><td>{{.Doc.Edition}}</td></tr>
    <tr><td>Materials</td><td>{{join .Doc.Materials}}</td></tr>
    {{if .Doc.Gemstones}}<tr><td>Gemstones</td><td>{{join .Doc.Gemstones}}</td></tr>{{end}}
    <tr><td>Rarity Score</td><td>{{.Doc.RarityScore}} / 100</td></tr>
    <tr><td>Registered Owner</td><td>{{.Doc.OwnerName}}</td></tr>
    <tr><td>Issued</td><td>{{.Doc.IssuedAt.Format "02 Jan 2006"}}</td></tr>
  </table>
  <p class="verification">Verify this certificate online with token
  <strong>{{.Doc.VerificationToken}}</strong>.</p>
  <p class="signature">{{.Atelier.Director}}, Director</p>
</div>`

const contractTemplate = `<div class="document contract">
  <h1>{{.Atelier.Name}}</h1>
  <h2>Sales Agreement</h2>
  <p>Contract Reference: <strong>{{.Doc.Reference}}</strong></p>
  <p>Date: {{.Doc.IssuedAt.Format "02 Jan 2006"}}</p>
  <p>Between {{.Atelier.Name}}, {{.Atelier.Address}} (the Seller) and
  {{.Doc.BuyerName}} ({{.Doc.BuyerEmail}}) (the Buyer).</p>
  <table>
    <tr><td>Piece</td><td>{{.Doc.PieceTitle}}</td></tr>
    <tr><td>Serial Number</td><td>{{.Doc.SerialNumber}}</td></tr>
    <tr><td>Purchase Price</td><td>{{money .Doc.TotalPrice}}</td></tr>
  </table>
  <h3>Terms</h3>
  <ol>
    {{range .Doc.Terms}}<li>{{.}}</li>{{end}}
  </ol>
  <p class="signature">{{.Atelier.Director}}, Director</p>
</div>`
