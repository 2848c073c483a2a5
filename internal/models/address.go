package models

type Province struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

type District struct {
	Code         int    `json:"code"`
	Name         string `json:"name"`
	ProvinceCode int    `json:"province_code"`
}

type Ward struct {
	Code         int    `json:"code"`
	Name         string `json:"name"`
	DistrictCode int    `json:"district_code"`
}
