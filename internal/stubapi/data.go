package stubapi

import "github.com/mmeshcher/selfdispatch-system/internal/model"

type claimJSON struct {
	ClaimID      string   `json:"claim_id"`
	ServiceTag   string   `json:"service_tag"`
	Description  string   `json:"description"`
	CreatedDate  string   `json:"created_date"`
	Status       string   `json:"status"`
	CreatedBy    string   `json:"created_by"`
	PartNumber   string   `json:"part_number,omitempty"`
	SerialNumber string   `json:"serial_number,omitempty"`
	ImagePaths   []string `json:"image_paths,omitempty"`
}

type warrantyJSON struct {
	ServiceTag   string `json:"service_tag"`
	ProductName  string `json:"product_name"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Status       string `json:"status"`
	IsValid      bool   `json:"is_valid"`
	ServiceLevel string `json:"service_level,omitempty"`
}

// Образцы данных повторяют структуру примеров из вендорской документации,
// чтобы UI можно было проверить без доступа к сети.
func sampleClaims() map[model.VendorType][]claimJSON {
	return map[model.VendorType][]claimJSON{
		model.VendorDell: {
			{
				ClaimID:     "SR123456789",
				ServiceTag:  "ABC1234",
				Description: "Laptop does not power on, power LED blinks amber",
				CreatedDate: "2026-08-20T09:15:00Z",
				Status:      "Open",
				CreatedBy:   "tech1",
				PartNumber:  "0G7X52",
			},
			{
				ClaimID:      "SR123456790",
				ServiceTag:   "DEF5678",
				Description:  "Cracked display after drop, touch still works",
				CreatedDate:  "2026-08-18T14:02:00Z",
				Status:       "Closed",
				CreatedBy:    "tech2",
				SerialNumber: "CN0G7X52-74180",
			},
		},
		model.VendorLenovo: {
			{
				ClaimID:     "LNV-001",
				ServiceTag:  "PF0ABCDE",
				Description: "Sample Lenovo claim",
				CreatedDate: "2026-08-21T11:30:00Z",
				Status:      "Open",
				CreatedBy:   "tech1",
			},
		},
	}
}

func sampleWarranties() map[model.VendorType]map[string]warrantyJSON {
	return map[model.VendorType]map[string]warrantyJSON{
		model.VendorDell: {
			"ABC1234": {
				ServiceTag:   "ABC1234",
				ProductName:  "Latitude 5440",
				StartDate:    "2024-03-01T00:00:00Z",
				EndDate:      "2027-03-01T00:00:00Z",
				Status:       "In Warranty",
				IsValid:      true,
				ServiceLevel: "ProSupport NBD",
			},
			"DEF5678": {
				ServiceTag:  "DEF5678",
				ProductName: "OptiPlex 7010",
				StartDate:   "2021-06-15T00:00:00Z",
				EndDate:     "2024-06-15T00:00:00Z",
				Status:      "Expired",
				IsValid:     false,
			},
		},
		model.VendorLenovo: {
			"PF0ABCDE": {
				ServiceTag:   "PF0ABCDE",
				ProductName:  "ThinkPad T14 Gen 4",
				StartDate:    "2025-01-10T00:00:00Z",
				EndDate:      "2028-01-10T00:00:00Z",
				Status:       "In Warranty",
				IsValid:      true,
				ServiceLevel: "Premier Support",
			},
		},
	}
}
