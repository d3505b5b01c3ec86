package seed

type gender int

const (
	male gender = iota
	female
)

var maleNames = []string{
	"Александр", "Алексей", "Андрей", "Борис", "Василий", "Виктор", "Владимир",
	"Дмитрий", "Евгений", "Иван", "Игорь", "Константин", "Михаил", "Николай",
	"Олег", "Павел", "Пётр", "Роман", "Сергей", "Юрий",
}

var femaleNames = []string{
	"Александра", "Анастасия", "Анна", "Валентина", "Вера", "Галина", "Дарья",
	"Екатерина", "Елена", "Ирина", "Ксения", "Людмила", "Марина", "Мария",
	"Наталья", "Ольга", "Светлана", "Татьяна", "Юлия", "Яна",
}

// surnameStems take "ов"/"ова" style endings: the female form appends "а".
var surnameStems = []string{
	"Иванов", "Петров", "Сидоров", "Смирнов", "Кузнецов", "Попов", "Соколов",
	"Лебедев", "Козлов", "Новиков", "Морозов", "Волков", "Соловьёв", "Васильев",
	"Зайцев", "Павлов", "Семёнов", "Голубев", "Виноградов", "Богданов",
}

// patronymicStems are fathers' names; the suffix depends on gender.
var patronymicStems = []struct{ male, female string }{
	{"Александрович", "Александровна"},
	{"Алексеевич", "Алексеевна"},
	{"Андреевич", "Андреевна"},
	{"Борисович", "Борисовна"},
	{"Викторович", "Викторовна"},
	{"Владимирович", "Владимировна"},
	{"Дмитриевич", "Дмитриевна"},
	{"Иванович", "Ивановна"},
	{"Игоревич", "Игоревна"},
	{"Михайлович", "Михайловна"},
	{"Николаевич", "Николаевна"},
	{"Олегович", "Олеговна"},
	{"Павлович", "Павловна"},
	{"Петрович", "Петровна"},
	{"Сергеевич", "Сергеевна"},
	{"Юрьевич", "Юрьевна"},
}

var streets = []string{
	"Ленина", "Гагарина", "Пушкина", "Советская", "Мира", "Садовая", "Лесная",
	"Школьная", "Молодёжная", "Центральная", "Набережная", "Заречная",
	"Победы", "Строителей", "Кирова", "Чехова", "Лермонтова", "Горького",
	"Комсомольская", "Первомайская",
}

// buildingLetters are the suffixes of "12Б" style building numbers.
var buildingLetters = []rune("АБВГК")
