package command

// Synthesize maps an intent to a canonical command. The rules are tried in
// order and the first match wins:
//
//  1. change with a color: "change color <color>"
//  2. change without a color: "change color random"
//  3. jump, whatever else was said: "jump"
//  4. a direction with no action: "move left" or "move right"
//     (up and down fall through)
//  5. any other action with a direction: "<action> <direction>"
//  6. anything else: [Unrecognized]
func Synthesize(in Intent) string {
	switch {
	case in.Action == actionChange && in.Color != "":
		return ChangeColorPrefix + in.Color
	case in.Action == actionChange:
		return ChangeColorRandom
	case in.Action == actionJump:
		return Jump
	case in.Action == "" && in.Direction == dirLeft:
		return MoveLeft
	case in.Action == "" && in.Direction == dirRight:
		return MoveRight
	case in.Action != "" && in.Direction != "":
		return in.Action + " " + in.Direction
	default:
		return Unrecognized
	}
}
