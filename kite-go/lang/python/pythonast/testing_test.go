package pythonast

import "go/token"

func posOf(i int) token.Pos { return token.Pos(i) }
