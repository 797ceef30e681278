package openai

const (
	systemPrompt = `You extract facts about pharmaceutical suppliers.
		Use only what you know with reasonable certainty or what the provided text states.
		Return exactly one valid JSON value. No prose, no markdown.`

	supplierSearchPrompt = `List companies that can supply the following medicine in bulk.
Query: %s
Market: %s

Return a JSON array (at most %d items) of objects with fields:
company_name (string), website (string or null), description (string),
business_type ("Manufacturer"|"Distributor"|"Wholesaler"|"Retailer"|"Unknown"),
email (string or null), phone (string or null), address (string or null),
certifications (array of strings, e.g. "GMP", "GDP", "ISO 9001"),
serves_hospitals (bool), international_shipping (bool), is_bulk_supplier (bool),
minimum_order_quantity (integer or null), confidence (number 0..1).
Prefer wholesalers and distributors licensed in the market. Return [] when unsure.`

	enrichPrompt = `Medicine query: %s

For each numbered supplier below infer its profile from the name, website and snippet.
%s
Return a JSON array with one object per supplier:
index (the number shown), business_type ("Manufacturer"|"Distributor"|"Wholesaler"|"Retailer"|"Unknown"),
serves_hospitals (bool or null), international_shipping (bool or null),
certifications (array of strings), confidence (number 0..1 or null).`

	vendorProfilePrompt = `Research the pharmaceutical vendor below and describe its size and reach.
Vendor: %s
Country: %s
Known website: %s

Evidence from web search:
%s

Return a JSON object with fields:
business_type (string), employee_count (integer or null), minimum_order_quantity (integer or null),
number_of_locations (integer or null), geographic_coverage ("Local"|"National"|"Regional"|"International" or ""),
certifications (array of strings), client_types (array of strings such as "Hospitals", "Clinics", "Pharmacies"),
official_website (string or "").
Use null or empty values for anything the evidence does not support.`
)
