package lookup

import "github.com/gNutty/vesselradar/pkg/models"

func ptr(v float64) *float64 { return &v }

func defaults() *Tables {
	return &Tables{
		identityOverrides: map[string]string{
			"HMM HOPE":  "440176000",
			"MSC OSCAR": "355906000",
			"EVER WEB":  "563237400",
		},
		fallbackPositions: map[string]FallbackPosition{
			"440176000": {Name: "HMM HOPE", Latitude: 13.048, Longitude: 100.897, Speed: ptr(0), Course: ptr(0)},
			"355906000": {Name: "MSC OSCAR", Latitude: 5.274, Longitude: -4.008, Speed: ptr(12.5), Course: ptr(270)},
			"563237400": {Name: "EVER WEB", Latitude: 49.286, Longitude: -123.111, Speed: ptr(0), Course: ptr(0)},
		},
		// Order matters: the first key contained in the port name wins.
		ports: []PortCoordinate{
			{Key: "LAEM CHABANG", Coordinate: models.Coordinate{Latitude: 13.0548, Longitude: 100.8801}},
			{Key: "BANGKOK", Coordinate: models.Coordinate{Latitude: 13.6923, Longitude: 100.5746}},
			{Key: "LAT KRABANG", Coordinate: models.Coordinate{Latitude: 13.7060, Longitude: 100.7800}},
			{Key: "SONGKHLA", Coordinate: models.Coordinate{Latitude: 7.2113, Longitude: 100.5960}},
			{Key: "SINGAPORE", Coordinate: models.Coordinate{Latitude: 1.2644, Longitude: 103.8222}},
			{Key: "PORT KLANG", Coordinate: models.Coordinate{Latitude: 3.0000, Longitude: 101.3833}},
			{Key: "TANJUNG PELEPAS", Coordinate: models.Coordinate{Latitude: 1.3625, Longitude: 103.5486}},
			{Key: "HO CHI MINH", Coordinate: models.Coordinate{Latitude: 10.7626, Longitude: 106.7450}},
			{Key: "HAIPHONG", Coordinate: models.Coordinate{Latitude: 20.8650, Longitude: 106.6830}},
			{Key: "HONG KONG", Coordinate: models.Coordinate{Latitude: 22.3383, Longitude: 114.1289}},
			{Key: "SHANGHAI", Coordinate: models.Coordinate{Latitude: 31.3656, Longitude: 121.6144}},
			{Key: "NINGBO", Coordinate: models.Coordinate{Latitude: 29.9333, Longitude: 121.8833}},
			{Key: "SHENZHEN", Coordinate: models.Coordinate{Latitude: 22.4847, Longitude: 113.8731}},
			{Key: "BUSAN", Coordinate: models.Coordinate{Latitude: 35.1028, Longitude: 129.0403}},
			{Key: "TOKYO", Coordinate: models.Coordinate{Latitude: 35.6170, Longitude: 139.7720}},
			{Key: "YOKOHAMA", Coordinate: models.Coordinate{Latitude: 35.4503, Longitude: 139.6500}},
			{Key: "JEBEL ALI", Coordinate: models.Coordinate{Latitude: 25.0112, Longitude: 55.0613}},
			{Key: "ABIDJAN", Coordinate: models.Coordinate{Latitude: 5.2906, Longitude: -4.0083}},
			{Key: "ROTTERDAM", Coordinate: models.Coordinate{Latitude: 51.9490, Longitude: 4.1453}},
			{Key: "HAMBURG", Coordinate: models.Coordinate{Latitude: 53.5400, Longitude: 9.9667}},
			{Key: "LOS ANGELES", Coordinate: models.Coordinate{Latitude: 33.7406, Longitude: -118.2760}},
			{Key: "LONG BEACH", Coordinate: models.Coordinate{Latitude: 33.7542, Longitude: -118.2165}},
			{Key: "VANCOUVER", Coordinate: models.Coordinate{Latitude: 49.2888, Longitude: -123.1111}},
		},
		defaultCoordinate: models.Coordinate{Latitude: 13.048, Longitude: 100.897},
		// AIS type codes 70-79 are cargo ships; providers report them as text.
		cargoTypes: []string{"container", "cargo", "bulk", "tanker", "ro-ro", "reefer"},
	}
}
