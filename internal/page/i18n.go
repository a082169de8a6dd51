package page

// Strings are the user-visible texts of one dashboard variant.
type Strings struct {
	PageTitle     string
	Title         string
	UploadLabel   string
	UploadButton  string
	UploadDone    string
	PathLabel     string
	ColumnLabel   string
	BasemapLabel  string
	SchemeLabel   string
	LabelsToggle  string
	ResetButton   string
	Hint          string
	Prompt        string
	LoadFailed    string
	ListToggle    string
	InfoToggle    string
	Info          []string
	LayerName     string
	TooltipAlias  string
	FeatureCount  string
	SourceCaption string
}

var english = Strings{
	PageTitle:     "Zurich Neighborhoods",
	Title:         "Zurich Neighborhood Map",
	UploadLabel:   "Upload Zurich GeoJSON file",
	UploadButton:  "Upload",
	UploadDone:    "File uploaded: %s",
	PathLabel:     "Or enter the path to your GeoJSON file:",
	ColumnLabel:   "Column containing neighborhood names:",
	ResetButton:   "Clear",
	Hint:          "Hover over a neighborhood to see its name",
	Prompt:        "Please upload a GeoJSON file with Zurich neighborhood boundaries or provide a file path.",
	LoadFailed:    "Error loading GeoJSON",
	ListToggle:    "Show list of all neighborhoods",
	LayerName:     "Neighborhoods",
	TooltipAlias:  "Neighborhood",
	FeatureCount:  "%d features",
	SourceCaption: "Source",
}

var german = Strings{
	PageTitle:     "Zürcher Quartiere",
	Title:         "Karte der Stadtzürcher Quartiere",
	UploadLabel:   "GeoJSON-Datei der Zürcher Quartiere hochladen",
	UploadButton:  "Hochladen",
	UploadDone:    "Datei hochgeladen: %s",
	PathLabel:     "Oder Pfad zur GeoJSON-Datei eingeben:",
	ColumnLabel:   "Spalte mit den Quartiernamen:",
	BasemapLabel:  "Hintergrundkarte",
	SchemeLabel:   "Farbschema",
	LabelsToggle:  "Quartiernamen auf der Karte anzeigen",
	ResetButton:   "Entfernen",
	Hint:          "Fahren Sie mit der Maus über ein Quartier, um seinen Namen zu sehen.",
	Prompt:        "Bitte laden Sie eine GeoJSON-Datei mit den Zürcher Quartiergrenzen hoch oder geben Sie einen Dateipfad an.",
	LoadFailed:    "Fehler beim Laden der GeoJSON-Datei",
	ListToggle:    "Liste aller Quartiere anzeigen",
	InfoToggle:    "Über die Zürcher Quartiere",
	LayerName:     "Quartiere",
	TooltipAlias:  "Quartier",
	FeatureCount:  "%d Geometrien",
	SourceCaption: "Quelle",
	Info: []string{
		"Die Stadt Zürich ist in 12 Stadtkreise und 34 statistische Quartiere gegliedert. " +
			"Die Quartiere gehen grösstenteils auf die früheren Gemeinden zurück, die 1893 und 1934 eingemeindet wurden.",
		"Die Karte färbt jedes Quartier gemäss dem gewählten Farbschema ein. " +
			"Beim Überfahren mit der Maus wird das Quartier hervorgehoben und sein Name eingeblendet.",
		"Die Quartiergrenzen stammen aus der hochgeladenen oder angegebenen GeoJSON-Datei, " +
			"zum Beispiel aus dem Open-Data-Katalog der Stadt Zürich.",
	},
}
