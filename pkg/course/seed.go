package course

// SeedCourses is the built-in catalogue served before any material is uploaded
func SeedCourses() map[string]string {
	return map[string]string{
		"variables": "JavaScript has let (block-scoped, reassignable), const (block-scoped, not reassignable), and var (function-scoped). let and const are preferred in modern JavaScript.",
		"functions": "Functions can be declared as function declarations or arrow functions. Arrow functions have lexical this binding.",
		"arrays":    "Arrays store ordered collections of items. Use methods like push(), pop(), map(), filter().",
		"objects":   "Objects store key-value pairs. Access properties with dot notation or bracket notation.",
		"python":    "Python variables are created with assignment. Lists use [], dictionaries use {}. Functions defined with def keyword.",
		"loops":     "JavaScript has for, while, do-while loops. Use for...of for arrays, for...in for objects. Python has for and while loops.",
		"classes":   "JavaScript classes use class keyword. Python classes also use class keyword. Both support inheritance.",
		"async":     "JavaScript async/await for promises. Python asyncio for asynchronous programming.",
	}
}
