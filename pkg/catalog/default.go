package catalog

// defaultExhibits is the stock museum floor plan.
var defaultExhibits = []Exhibit{
	{Name: "Renaissance Art Hall", Keywords: []string{"da vinci"}, Description: "Paintings and sketches from the Italian Renaissance, including studies attributed to Leonardo da Vinci."},
	{Name: "Impressionist Gallery", Keywords: []string{"van gogh"}, Description: "Late nineteenth century Impressionist and Post-Impressionist works, with a room devoted to Van Gogh."},
	{Name: "Natural History Wing", Keywords: []string{"dinosaur"}, Description: "Fossil skeletons and casts, from early reptiles to the great dinosaurs."},
	{Name: "Cosmos Exploration Room", Keywords: []string{"space"}, Description: "Meteorites, spacecraft models and a small planetarium about space exploration."},
	{Name: "Ancient Egypt Exhibit", Keywords: []string{"egypt"}, Description: "Artifacts from ancient Egypt, including burial objects and hieroglyphic tablets."},
	{Name: "Technology and Innovation Lab", Keywords: []string{"robot"}, Description: "Hands-on displays of machines, computing and robotics."},
	{Name: "Ocean Wonders Zone", Keywords: []string{"marine"}, Description: "Marine life from coral reefs to the deep sea."},
	{Name: "Earth Science Theatre", Keywords: []string{"volcano"}, Description: "Plate tectonics, earthquakes and a working volcano model."},
	{Name: "Medieval Europe Hall", Keywords: []string{"medieval"}, Description: "Armour, manuscripts and daily life in medieval Europe."},
	{Name: "Historic Fashion Gallery", Keywords: []string{"fashion"}, Description: "Three centuries of clothing and fashion design."},
	{Name: "Artificial Intelligence Hub", Keywords: []string{"ai"}, Description: "The history of artificial intelligence, from early chess programs to language models."},
	{Name: "Ancient Greece Exhibit", Keywords: []string{"greek"}, Description: "Greek pottery, sculpture and the origins of the Olympic games."},
	{Name: "Dynasties of China Pavilion", Keywords: []string{"china"}, Description: "Bronzes, porcelain and silk spanning the dynasties of China."},
	{Name: "First Nations Cultural Space", Keywords: []string{"australia"}, Description: "Art and stories of the First Nations peoples of Australia."},
	{Name: "Entomology Showcase", Keywords: []string{"insect"}, Description: "Pinned and living insect collections."},
	{Name: "Sounds Through the Ages Room", Keywords: []string{"music"}, Description: "Musical instruments from bone flutes to synthesizers."},
	{Name: "Digital Media and Photography Wing", Keywords: []string{"photography"}, Description: "Cameras and landmark photography from the daguerreotype onward."},
	{Name: "Automotive Innovations Hall", Keywords: []string{"cars"}, Description: "Historic cars and the engineering behind them."},
	{Name: "Aviation Heritage Gallery", Keywords: []string{"planes"}, Description: "Gliders, propeller planes and jet engines."},
	{Name: "History of Medicine Chamber", Keywords: []string{"medicine"}, Description: "Surgical instruments, apothecary jars and milestones of medicine."},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return MustNew(defaultExhibits)
}
