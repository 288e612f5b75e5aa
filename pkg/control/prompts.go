package control

// Prompts is the catalogue of actions a performer can be asked to act out.
var Prompts = []string{
	"sentarse", "leer", "nadar", "bailar", "asentir", "negar", "saltar",
	"esconderse", "tocar_instrumento", "levantar_brazo", "bajar_brazo",
	"remar", "gritar", "caminar", "pensar", "mover_a_derecha", "mover_a_izquierda",
	"abrazar", "estirar", "girar", "imitar_animal", "reír", "señalar", "revolver",
}

// Picker is the randomness RandomPrompt needs.
type Picker interface {
	IntN(n int) int
}

// RandomPrompt returns a prompt from the catalogue.
func RandomPrompt(r Picker) string {
	return Prompts[r.IntN(len(Prompts))]
}
