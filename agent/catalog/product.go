package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Product is one raw catalog record. Field names follow the upstream search API
// so live responses and the offline catalog decode the same way.
type Product struct {
	Title       string `json:"product_title"`
	Price       string `json:"product_price"`
	Photo       string `json:"product_photo"`
	URL         string `json:"product_url"`
	ASIN        string `json:"asin"`
	Rating      Rating `json:"product_star_rating"`
	Description string `json:"product_description"`
}

// Rating accepts the star rating as a JSON string, number or null.
type Rating string

func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Rating(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Rating(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}
