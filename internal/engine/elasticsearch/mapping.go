package elasticsearch

// DefaultIndexName is the default index holding catalogue documents.
const DefaultIndexName = "omnicommerce_products"

// indexMapping declares the catalogue document fields. The display fields
// are copied into "text" so free-text clauses search them together.
const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "catalogue_text": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding"]
        }
      }
    }
  },
  "mappings": {
    "dynamic": true,
    "properties": {
      "text":                 { "type": "text", "analyzer": "catalogue_text" },
      "id":                   { "type": "keyword" },
      "sku":                  { "type": "keyword", "copy_to": "text" },
      "slug":                 { "type": "keyword" },
      "name":                 { "type": "text", "analyzer": "catalogue_text", "copy_to": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "name_web":             { "type": "text", "analyzer": "catalogue_text", "copy_to": "text" },
      "description":          { "type": "text", "analyzer": "catalogue_text", "copy_to": "text" },
      "family_code":          { "type": "keyword" },
      "promo_code":           { "type": "keyword" },
      "category":             { "type": "keyword" },
      "groups":               { "type": "keyword" },
      "features":             { "type": "keyword" },
      "net_price_with_vat":   { "type": "double" },
      "gross_price_with_vat": { "type": "double" },
      "promo_price_with_vat": { "type": "double" },
      "discount_value":       { "type": "double" },
      "discount_percent":     { "type": "double" },
      "is_promo":             { "type": "boolean" },
      "availability":         { "type": "keyword" },
      "images":               { "type": "keyword", "index": false },
      "variants":             { "type": "object", "enabled": false },
      "product_brands":       { "type": "object", "enabled": false },
      "product_tags":         { "type": "object", "enabled": false },
      "id_group":             { "type": "object", "enabled": false }
    }
  }
}`
