package internal

// User is a reading-log account.
type User struct {
	ID          int64  `json:"id"`
	Path        string `json:"path"`
	Name        string `json:"name"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
	SignUpDate  string `json:"sign_up_date,omitempty"`
}

// BookEntry is one book on a user's "read" shelf.
type BookEntry struct {
	ID            int64       `json:"id"`
	Path          string      `json:"path"`
	CreatedAt     string      `json:"created_at"`
	Page          int         `json:"page"`
	AuthorName    string      `json:"author_name,omitempty"`
	BookcaseNames []string    `json:"bookcase_names"`
	Book          Book        `json:"book"`
	Details       BookDetails `json:"details"`
}

// Book is the catalog record a BookEntry refers to.
type Book struct {
	ID                int64      `json:"id"`
	Path              string     `json:"path"`
	AmazonURLs        AmazonURLs `json:"amazon_urls"`
	Title             string     `json:"title"`
	ImageURL          string     `json:"image_url"`
	RegistrationCount int        `json:"registration_count"`
	Page              int        `json:"page"`
	Original          bool       `json:"original"`
	IsAdvertisable    bool       `json:"is_advertisable"`
	Author            Author     `json:"author"`
}

// AmazonURLs are store links attached to a Book.
type AmazonURLs struct {
	Outline      string `json:"outline,omitempty"`
	Registration string `json:"registration,omitempty"`
}

// Author of a Book.
type Author struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// BookDetails are filled in from bibliographic metadata after the shelf is
// fetched.
type BookDetails struct {
	ISBN            string `json:"isbn,omitempty"`
	TitleReading    string `json:"titleReading,omitempty"`
	Description     string `json:"description,omitempty"`
	PublicationDate string `json:"publicationDate,omitempty"`
}

// Details are scraped from a product page and looked up by ASIN.
type Details struct {
	Description string `json:"description"`
	ISBN        string `json:"isbn"`
}

// Bibliography is a bibliographic record keyed by ISBN.
type Bibliography struct {
	Summary struct {
		ISBN    string `json:"isbn"`
		PubDate string `json:"pubdate"`
	} `json:"summary"`
	Onix struct {
		CollateralDetail struct {
			TextContent []struct {
				TextType string `json:"TextType"`
				Text     string `json:"Text"`
			} `json:"TextContent"`
		} `json:"CollateralDetail"`
		DescriptiveDetail struct {
			TitleDetail struct {
				TitleElement struct {
					TitleText struct {
						CollationKey string `json:"collationkey"`
					} `json:"TitleText"`
				} `json:"TitleElement"`
			} `json:"TitleDetail"`
		} `json:"DescriptiveDetail"`
	} `json:"onix"`
}
