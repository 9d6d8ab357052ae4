// Package xmlfeed genera el feed de precios del catálogo en formato YML
// (yml_catalog → shop → categories/offers).
package xmlfeed

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/price-catalog/internal/domain/entity"
	"github.com/jhoicas/price-catalog/internal/domain/leadtime"
)

// ContentType del feed.
const ContentType = "application/xml; charset=utf-8"

const currencyRUB = "RUR"

// Shop datos de la tienda en la cabecera del feed.
type Shop struct {
	Name string
	URL  string
}

// YMLFeed construye el documento del feed.
type YMLFeed struct {
	shop Shop
}

// NewYMLFeed construye el generador.
func NewYMLFeed(shop Shop) *YMLFeed {
	return &YMLFeed{shop: shop}
}

// Build serializa los productos. Una categoría por fabricante (ids 1..n por nombre);
// available indica stock en alguna ubicación.
func (f *YMLFeed) Build(products []*entity.Product, now time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("yml_catalog")
	root.CreateAttr("date", now.Format("2006-01-02T15:04:05-07:00"))

	shop := root.CreateElement("shop")
	shop.CreateElement("name").SetText(f.shop.Name)
	shop.CreateElement("company").SetText(f.shop.Name)
	if f.shop.URL != "" {
		shop.CreateElement("url").SetText(f.shop.URL)
	}
	cur := shop.CreateElement("currencies").CreateElement("currency")
	cur.CreateAttr("id", currencyRUB)
	cur.CreateAttr("rate", "1")

	categoryIDs := categories(products)
	cats := shop.CreateElement("categories")
	for _, name := range sortedKeys(categoryIDs) {
		c := cats.CreateElement("category")
		c.CreateAttr("id", strconv.Itoa(categoryIDs[name]))
		c.SetText(name)
	}

	offers := shop.CreateElement("offers")
	for _, p := range products {
		addOffer(offers, p, categoryIDs[p.Manufacturer])
	}

	doc.Indent(2)
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("feed: serializar: %w", err)
	}
	return buf.Bytes(), nil
}

func addOffer(parent *etree.Element, p *entity.Product, categoryID int) {
	stock := max(p.AstanaQty, 0) + max(p.AlmatyQty, 0)

	o := parent.CreateElement("offer")
	o.CreateAttr("id", p.Article)
	o.CreateAttr("available", strconv.FormatBool(stock > 0))

	if p.CatalogURL != "" {
		o.CreateElement("url").SetText(p.CatalogURL)
	}
	o.CreateElement("price").SetText(strconv.FormatInt(p.PriceRub, 10))
	o.CreateElement("currencyId").SetText(currencyRUB)
	o.CreateElement("categoryId").SetText(strconv.Itoa(categoryID))
	if p.ImageURL != "" {
		o.CreateElement("picture").SetText(p.ImageURL)
	}
	o.CreateElement("name").SetText(p.Name)
	o.CreateElement("vendor").SetText(p.Manufacturer)
	o.CreateElement("vendorCode").SetText(p.Article)
	o.CreateElement("count").SetText(strconv.Itoa(stock))

	lt := leadtime.Estimate(p.AstanaQty, p.AlmatyQty, 0, p.LeadTimeDefault)
	param := o.CreateElement("param")
	param.CreateAttr("name", "Срок поставки")
	param.SetText(lt.Text)
}

func categories(products []*entity.Product) map[string]int {
	names := make(map[string]int)
	for _, p := range products {
		names[p.Manufacturer] = 0
	}
	for i, name := range sortedKeys(names) {
		names[name] = i + 1
	}
	return names
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
