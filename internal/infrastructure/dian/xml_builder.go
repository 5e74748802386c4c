package dian

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	pkgdian "github.com/jhoicas/facturacion-clinica/pkg/dian"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// Namespaces oficiales UBL 2.1 y DIAN (Anexo Técnico 1.9).
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	NsExt     = "urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"
	NsSts     = "dian:gov:co:facturaelectronica:Structures-2-1"
	NsDs      = "http://www.w3.org/2000/09/xmldsig#"
	NsXades   = "http://uri.etsi.org/01903/v1.3.2#"
	nsXsi     = "http://www.w3.org/2001/XMLSchema-instance"

	schemaLocationInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2 http://docs.oasis-open.org/ubl/os-UBL-2.1/xsd/maindoc/UBL-Invoice-2.1.xsd"

	currencyCOP = "COP"
	// schemeAgencyID de la DIAN en identificaciones.
	agencyDIAN = "195"
)

// XMLBuilderService construye el XML UBL 2.1 de la factura (sin firma XAdES).
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build genera el documento Invoice. ext:UBLExtensions es siempre el primer hijo y su segundo
// ExtensionContent queda vacío para la firma.
func (s *XMLBuilderService) Build(ctx *InvoiceBuildContext) ([]byte, error) {
	if ctx == nil || ctx.Invoice == nil || ctx.Patient == nil {
		return nil, fmt.Errorf("dian: faltan factura o paciente en el contexto")
	}
	if ctx.DocumentID == "" || ctx.CUFE == "" {
		return nil, fmt.Errorf("dian: número de documento y CUFE son obligatorios")
	}
	inv := ctx.Invoice

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="no"`)
	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", NsInvoice)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)
	root.CreateAttr("xmlns:ds", NsDs)
	root.CreateAttr("xmlns:ext", NsExt)
	root.CreateAttr("xmlns:sts", NsSts)
	root.CreateAttr("xmlns:xades", NsXades)
	root.CreateAttr("xmlns:xsi", nsXsi)
	root.CreateAttr("xsi:schemaLocation", schemaLocationInvoice)

	s.writeUBLExtensions(root, ctx)

	cbc(root, "UBLVersionID", "UBL 2.1")
	cbc(root, "CustomizationID", pkgdian.OperationTypeHealth)
	cbc(root, "ProfileID", "DIAN 2.1: Factura Electrónica de Venta")
	cbc(root, "ProfileExecutionID", ctx.TipoAmbiente)
	cbc(root, "ID", ctx.DocumentID)
	uuid := cbc(root, "UUID", ctx.CUFE)
	uuid.CreateAttr("schemeID", ctx.TipoAmbiente)
	uuid.CreateAttr("schemeName", "CUFE-SHA384")
	cbc(root, "IssueDate", ctx.IssuedAt.Format("2006-01-02"))
	cbc(root, "IssueTime", ctx.IssuedAt.Format("15:04:05-07:00"))
	if inv.DueAt != nil {
		cbc(root, "DueDate", inv.DueAt.In(ctx.IssuedAt.Location()).Format("2006-01-02"))
	}
	cbc(root, "InvoiceTypeCode", pkgdian.InvoiceTypeSale)
	if inv.Observations != "" {
		cbc(root, "Note", inv.Observations)
	}
	cbc(root, "DocumentCurrencyCode", currencyCOP)
	cbc(root, "LineCountNumeric", strconv.Itoa(len(inv.Items)))

	s.writeSupplierParty(root, ctx.Issuer)
	s.writeCustomerParty(root, ctx.Patient)
	s.writePaymentMeans(root, ctx)
	s.writeTaxTotals(root, inv)
	s.writeLegalMonetaryTotal(root, inv)
	for i, it := range inv.Items {
		s.writeInvoiceLine(root, i+1, it)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("dian: serializar XML: %w", err)
	}
	return out, nil
}

func cbc(parent *etree.Element, local, value string) *etree.Element {
	el := parent.CreateElement("cbc:" + local)
	el.SetText(value)
	return el
}

func cbcAmount(parent *etree.Element, local string, m money.Money) *etree.Element {
	el := cbc(parent, local, m.String())
	el.CreateAttr("currencyID", currencyCOP)
	return el
}

func (s *XMLBuilderService) writeUBLExtensions(root *etree.Element, ctx *InvoiceBuildContext) {
	exts := root.CreateElement("ext:UBLExtensions")

	content := exts.CreateElement("ext:UBLExtension").CreateElement("ext:ExtensionContent")
	dianExt := content.CreateElement("sts:DianExtensions")
	if res := ctx.Resolution; res != nil {
		ctl := dianExt.CreateElement("sts:InvoiceControl")
		ctl.CreateElement("sts:InvoiceAuthorization").SetText(res.Number)
		period := ctl.CreateElement("sts:AuthorizationPeriod")
		cbc(period, "StartDate", res.DateFrom.Format("2006-01-02"))
		cbc(period, "EndDate", res.DateTo.Format("2006-01-02"))
		auth := ctl.CreateElement("sts:AuthorizedInvoices")
		auth.CreateElement("sts:Prefix").SetText(res.Prefix)
		auth.CreateElement("sts:From").SetText(strconv.FormatInt(res.From, 10))
		auth.CreateElement("sts:To").SetText(strconv.FormatInt(res.To, 10))
	}
	source := dianExt.CreateElement("sts:InvoiceSource").CreateElement("cbc:IdentificationCode")
	source.CreateAttr("listAgencyID", "6")
	source.CreateAttr("listAgencyName", "United Nations Economic Commission for Europe")
	source.CreateAttr("listSchemeURI", "urn:oasis:names:specification:ubl:codelist:gc:CountryIdentificationCode-2.1")
	source.SetText("CO")
	if ctx.QRData != "" {
		dianExt.CreateElement("sts:QRCode").SetText(ctx.QRData)
	}

	exts.CreateElement("ext:UBLExtension").CreateElement("ext:ExtensionContent")
}

func (s *XMLBuilderService) writeSupplierParty(root *etree.Element, issuer Issuer) {
	sup := root.CreateElement("cac:AccountingSupplierParty")
	cbc(sup, "AdditionalAccountID", "1") // persona jurídica
	party := sup.CreateElement("cac:Party")
	cbc(party.CreateElement("cac:PartyName"), "Name", issuer.Name)

	nit := normalizeNIT(issuer.NIT)
	tax := party.CreateElement("cac:PartyTaxScheme")
	cbc(tax, "RegistrationName", issuer.Name)
	id := cbc(tax, "CompanyID", nit)
	id.CreateAttr("schemeAgencyID", agencyDIAN)
	id.CreateAttr("schemeName", pkgdian.IdentificationTypeNIT)
	if dv, err := pkgdian.NITCheckDigit(nit); err == nil {
		id.CreateAttr("schemeID", strconv.Itoa(dv))
	}
	cbc(tax, "TaxLevelCode", "O-13")
	if issuer.Address != "" || issuer.CityCode != "" {
		addr := tax.CreateElement("cac:RegistrationAddress")
		writeAddress(addr, issuer.CityCode, issuer.City, issuer.Address)
	}
	scheme := tax.CreateElement("cac:TaxScheme")
	cbc(scheme, "ID", pkgdian.TaxCodeIVA)
	cbc(scheme, "Name", pkgdian.TaxName(pkgdian.TaxCodeIVA))

	legal := party.CreateElement("cac:PartyLegalEntity")
	cbc(legal, "RegistrationName", issuer.Name)
	cbc(legal, "CompanyID", nit).CreateAttr("schemeName", pkgdian.IdentificationTypeNIT)

	if issuer.Email != "" {
		cbc(party.CreateElement("cac:Contact"), "ElectronicMail", issuer.Email)
	}
}

func (s *XMLBuilderService) writeCustomerParty(root *etree.Element, p *entity.Patient) {
	cust := root.CreateElement("cac:AccountingCustomerParty")
	cbc(cust, "AdditionalAccountID", "2") // persona natural
	party := cust.CreateElement("cac:Party")

	docType := pkgdian.IdentificationTypeCode(p.DocumentType)
	docNumber := strings.TrimSpace(p.DocumentNumber)

	pid := cbc(party.CreateElement("cac:PartyIdentification"), "ID", docNumber)
	pid.CreateAttr("schemeName", docType)
	cbc(party.CreateElement("cac:PartyName"), "Name", p.FullName())

	if p.Address != "" || p.MunicipalityCode != "" {
		addr := party.CreateElement("cac:PhysicalLocation").CreateElement("cac:Address")
		writeAddress(addr, p.MunicipalityCode, "", p.Address)
	}

	tax := party.CreateElement("cac:PartyTaxScheme")
	cbc(tax, "RegistrationName", p.FullName())
	cbc(tax, "CompanyID", docNumber).CreateAttr("schemeName", docType)
	cbc(tax, "TaxLevelCode", pkgdian.TaxLevelNoAplica)
	scheme := tax.CreateElement("cac:TaxScheme")
	cbc(scheme, "ID", "ZZ")
	cbc(scheme, "Name", "No aplica")

	person := party.CreateElement("cac:Person")
	cbc(person, "FirstName", p.FirstName)
	cbc(person, "FamilyName", p.LastName)

	if p.Email != "" || p.Phone != "" {
		contact := party.CreateElement("cac:Contact")
		if p.Phone != "" {
			cbc(contact, "Telephone", p.Phone)
		}
		if p.Email != "" {
			cbc(contact, "ElectronicMail", p.Email)
		}
	}
}

func writeAddress(addr *etree.Element, cityCode, city, line string) {
	if cityCode != "" {
		cbc(addr, "ID", cityCode)
		if len(cityCode) >= 2 {
			cbc(addr, "CountrySubentityCode", cityCode[:2])
		}
	}
	if city != "" {
		cbc(addr, "CityName", city)
	}
	if line != "" {
		cbc(addr.CreateElement("cac:AddressLine"), "Line", line)
	}
	country := addr.CreateElement("cac:Country")
	cbc(country, "IdentificationCode", "CO")
}

// writePaymentMeans contado si la factura ya está pagada, crédito con vencimiento en otro caso.
func (s *XMLBuilderService) writePaymentMeans(root *etree.Element, ctx *InvoiceBuildContext) {
	form := pkgdian.PaymentFormCredito
	if ctx.Invoice.Status == entity.InvoiceStatusPaid {
		form = pkgdian.PaymentFormContado
	}
	means := ctx.PaymentMeansCode
	if means == "" {
		means = pkgdian.PaymentMeansCash
	}
	pm := root.CreateElement("cac:PaymentMeans")
	cbc(pm, "ID", form)
	cbc(pm, "PaymentMeansCode", means)
	if form == pkgdian.PaymentFormCredito && ctx.Invoice.DueAt != nil {
		cbc(pm, "PaymentDueDate", ctx.Invoice.DueAt.In(ctx.IssuedAt.Location()).Format("2006-01-02"))
	}
}

// writeTaxTotals un cac:TaxTotal por código de tributo informado. La base gravable es el
// valor neto de las líneas.
func (s *XMLBuilderService) writeTaxTotals(root *etree.Element, inv *entity.Invoice) {
	base := inv.Subtotal.Sub(inv.Discounts)
	for _, code := range taxCodes(inv.Taxes) {
		amount := taxAmount(inv.Taxes, code)
		tt := root.CreateElement("cac:TaxTotal")
		cbcAmount(tt, "TaxAmount", amount)
		sub := tt.CreateElement("cac:TaxSubtotal")
		cbcAmount(sub, "TaxableAmount", base)
		cbcAmount(sub, "TaxAmount", amount)
		cat := sub.CreateElement("cac:TaxCategory")
		cbc(cat, "Percent", taxPercent(amount, base))
		scheme := cat.CreateElement("cac:TaxScheme")
		cbc(scheme, "ID", code)
		cbc(scheme, "Name", pkgdian.TaxName(code))
	}
}

func (s *XMLBuilderService) writeLegalMonetaryTotal(root *etree.Element, inv *entity.Invoice) {
	lines := inv.Subtotal.Sub(inv.Discounts)
	taxable := money.Zero
	if inv.TaxTotal.IsPositive() {
		taxable = lines
	}
	lmt := root.CreateElement("cac:LegalMonetaryTotal")
	cbcAmount(lmt, "LineExtensionAmount", lines)
	cbcAmount(lmt, "TaxExclusiveAmount", taxable)
	cbcAmount(lmt, "TaxInclusiveAmount", lines.Add(inv.TaxTotal))
	cbcAmount(lmt, "PayableAmount", inv.Total)
}

func (s *XMLBuilderService) writeInvoiceLine(root *etree.Element, lineNum int, it entity.InvoiceItem) {
	line := root.CreateElement("cac:InvoiceLine")
	cbc(line, "ID", strconv.Itoa(lineNum))
	cbc(line, "InvoicedQuantity", strconv.FormatInt(it.Quantity, 10)).CreateAttr("unitCode", pkgdian.UnitUnit)
	cbcAmount(line, "LineExtensionAmount", it.Subtotal)

	if it.Discount.IsPositive() {
		ac := line.CreateElement("cac:AllowanceCharge")
		cbc(ac, "ID", "1")
		cbc(ac, "ChargeIndicator", "false")
		cbc(ac, "AllowanceChargeReason", "Descuento")
		cbc(ac, "MultiplierFactorNumeric", taxPercent(it.Discount, it.Gross()))
		cbcAmount(ac, "Amount", it.Discount)
		cbcAmount(ac, "BaseAmount", it.Gross())
	}

	item := line.CreateElement("cac:Item")
	desc := it.Description
	if desc == "" {
		desc = "Servicio " + strconv.Itoa(lineNum)
	}
	cbc(item, "Description", desc)
	cbc(item.CreateElement("cac:StandardItemIdentification"), "ID", string(it.Type)).CreateAttr("schemeID", "999")

	price := line.CreateElement("cac:Price")
	cbcAmount(price, "PriceAmount", it.UnitPrice)
	cbc(price, "BaseQuantity", "1").CreateAttr("unitCode", pkgdian.UnitUnit)
}

// taxCodes códigos de tributo presentes, en orden de primera aparición.
func taxCodes(taxes []entity.TaxLine) []string {
	var codes []string
	seen := map[string]bool{}
	for _, t := range taxes {
		if !seen[t.Code] {
			seen[t.Code] = true
			codes = append(codes, t.Code)
		}
	}
	return codes
}

func taxAmount(taxes []entity.TaxLine, code string) money.Money {
	total := money.Zero
	for _, t := range taxes {
		if t.Code == code {
			total = total.Add(t.Amount)
		}
	}
	return total
}

func taxPercent(part, base money.Money) string {
	if !base.IsPositive() {
		return "0.00"
	}
	return part.Decimal().Div(base.Decimal()).Mul(decimal.NewFromInt(100)).StringFixed(2)
}

func normalizeNIT(nit string) string {
	nit = strings.TrimSpace(nit)
	if idx := strings.Index(nit, "-"); idx != -1 {
		nit = nit[:idx]
	}
	return pkgdian.OnlyDigits(nit)
}
