// Package dossier defines the case data assembled by the front-end before
// document generation: parties, facts, theses, jurisprudence and process
// metadata. A Dossier is not persisted as a single entity; it is the input
// contract of the prompt builder.
package dossier

// Polo designates which side of the suit a party occupies.
type Polo string

const (
	PoloAutor Polo = "autor"
	PoloReu   Polo = "reu"
)

// Address is the structured address block of a party or office.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
}

// Party is a client record attached to the dossier. Optional fields
// serialize as empty strings; the prompt builder never drops them from the
// serialized structure.
type Party struct {
	Name          string  `json:"name"`
	CPF           string  `json:"cpf"`
	CNPJ          string  `json:"cnpj"`
	RG            string  `json:"rg"`
	BirthDate     string  `json:"birth_date"`
	MaritalStatus string  `json:"marital_status"`
	Nationality   string  `json:"nationality"`
	Profession    string  `json:"profession"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
	Address       Address `json:"address"`
	Observations  string  `json:"observations"`
	Polo          Polo    `json:"polo"`
}

// AdverseParty is the opposing party. It carries a reduced field set and is
// serialized with its own fixed order, distinct from Party.
type AdverseParty struct {
	Name         string  `json:"name"`
	Document     string  `json:"document"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	Address      Address `json:"address"`
	Observations string  `json:"observations"`
}

// Process holds the metadata of the judicial process, when one exists.
type Process struct {
	Number    string `json:"number"`
	Court     string `json:"court"`
	District  string `json:"district"`
	CaseValue string `json:"case_value"`
}

// Dossier is the full case input for document generation.
type Dossier struct {
	Area           string         `json:"area"`
	DocumentType   string         `json:"document_type"`
	Parties        []Party        `json:"parties"`
	AdverseParties []AdverseParty `json:"adverse_parties"`
	Facts          string         `json:"facts"`
	Requests       string         `json:"requests"`
	Preliminaries  []string       `json:"preliminaries"`
	Theses         []string       `json:"theses"`
	Jurisprudence  []string       `json:"jurisprudence"`
	Process        Process        `json:"process"`
}

// HasAutor reports whether at least one party is designated autor.
func (d *Dossier) HasAutor() bool {
	for i := range d.Parties {
		if d.Parties[i].Polo == PoloAutor {
			return true
		}
	}
	return false
}

// MissingFields returns the human-readable labels of the four mandatory
// fields that are absent: area, document type, parties, facts. An empty
// result means generation may proceed.
func (d *Dossier) MissingFields() []string {
	var missing []string
	if d.Area == "" {
		missing = append(missing, "Área do Direito")
	}
	if d.DocumentType == "" {
		missing = append(missing, "Tipo de Documento")
	}
	if len(d.Parties) == 0 {
		missing = append(missing, "Partes (Cliente)")
	}
	if d.Facts == "" {
		missing = append(missing, "Fatos do Caso")
	}
	return missing
}

// Office is the lawyer/office identity record stamped into every generated
// document. Fetched from the office collaborator once per generation.
type Office struct {
	LawyerName    string `json:"lawyer_name"`
	OABNumber     string `json:"oab_number"`
	OABState      string `json:"oab_state"`
	OfficeName    string `json:"office_name"`
	OfficeAddress string `json:"office_address"`
	OfficePhone   string `json:"office_phone"`
	OfficeEmail   string `json:"office_email"`
}
