package analyze

import (
	"fmt"
)

// pagePrompt asks for the contact record of a company site. The wording is
// Polish to match the pages being analysed.
const pagePrompt = `Przeanalizuj stronę internetową firmy: %s

Zadanie:
1. Opisz firmę jednym zdaniem.
2. Wymień do trzech realizacji lub projektów firmy.
3. Znajdź adresy e-mail, telefony i adres siedziby (szukaj w sekcjach kontakt, o nas i w stopce).

Zwróć wyłącznie JSON w formacie:
{
  "email": "string lub null",
  "phone": "string lub null",
  "address": "string lub null",
  "description": "string lub null",
  "projects": ["string"],
  "contacts_list": [
    {"name": "string", "role": "string", "email": "string", "phone": "string"}
  ]
}

Treść strony:
%s`

// PagePrompt builds the extraction prompt for a page.
func PagePrompt(pageURL, text string) string {
	return fmt.Sprintf(pagePrompt, pageURL, text)
}
