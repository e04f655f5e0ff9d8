package bigquery

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/bqsink/types"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// proto field types backing each column type on the wire; tags without an
// entry are sent as strings, matching the warehouse default.
var protoTypes = map[types.DataType]descriptorpb.FieldDescriptorProto_Type{
	types.String:     descriptorpb.FieldDescriptorProto_TYPE_STRING,
	types.Bytes:      descriptorpb.FieldDescriptorProto_TYPE_BYTES,
	types.Integer:    descriptorpb.FieldDescriptorProto_TYPE_INT64,
	types.Float:      descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
	types.Bool:       descriptorpb.FieldDescriptorProto_TYPE_BOOL,
	types.Time:       descriptorpb.FieldDescriptorProto_TYPE_STRING,
	types.DateTime:   descriptorpb.FieldDescriptorProto_TYPE_STRING,
	types.Date:       descriptorpb.FieldDescriptorProto_TYPE_INT32,
	types.Timestamp:  descriptorpb.FieldDescriptorProto_TYPE_INT64,
	types.JSON:       descriptorpb.FieldDescriptorProto_TYPE_STRING,
	types.Geography:  descriptorpb.FieldDescriptorProto_TYPE_STRING,
	types.Numeric:    descriptorpb.FieldDescriptorProto_TYPE_STRING,
	types.BigNumeric: descriptorpb.FieldDescriptorProto_TYPE_STRING,
	types.RecordType: descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
}

// DescriptorProto builds the proto message descriptor the write stream
// expects for rows of the given schema. RECORD fields become nested message
// types named Sink<Parent><Field>.
func DescriptorProto(schema types.Schema, name string) (*descriptorpb.DescriptorProto, error) {
	desc := &descriptorpb.DescriptorProto{Name: proto.String(name)}

	for i, field := range schema {
		label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		switch field.Mode {
		case types.Repeated:
			label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
		case types.Required:
			label = descriptorpb.FieldDescriptorProto_LABEL_REQUIRED
		}

		fieldType, found := protoTypes[field.Type]
		if !found {
			fieldType = descriptorpb.FieldDescriptorProto_TYPE_STRING
		}

		descriptor := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(field.Name),
			Number: proto.Int32(int32(i + 1)),
			Type:   fieldType.Enum(),
			Label:  label.Enum(),
		}

		if field.Type == types.RecordType {
			nestedName := fmt.Sprintf("Sink%s%s", name, title(field.Name))
			nested, err := DescriptorProto(field.Fields, nestedName)
			if err != nil {
				return nil, err
			}
			desc.NestedType = append(desc.NestedType, nested)
			descriptor.TypeName = proto.String(nestedName)
		}

		desc.Field = append(desc.Field, descriptor)
	}

	return desc, nil
}

func title(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// rowMessageType compiles a descriptor into a dynamic message type rows can
// be filled into and serialized from.
func rowMessageType(descriptor *descriptorpb.DescriptorProto) (protoreflect.MessageType, error) {
	file := &descriptorpb.FileDescriptorProto{
		Name:        proto.String("row.proto"),
		Package:     proto.String("bqsink"),
		Syntax:      proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{descriptor},
	}

	compiled, err := protodesc.NewFile(file, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compile row descriptor: %s", err)
	}
	message := compiled.Messages().ByName(protoreflect.Name(descriptor.GetName()))
	if message == nil {
		return nil, fmt.Errorf("row message [%s] missing from compiled descriptor", descriptor.GetName())
	}
	return dynamicpb.NewMessageType(message), nil
}

// fillMessage copies a converted record into a dynamic row message. Values
// are already leaf representations (string, int32, int64, float64, bool,
// []byte), so a type mismatch here means the converter and descriptor
// disagree about the schema.
func fillMessage(msg protoreflect.Message, record types.Record) error {
	fields := msg.Descriptor().Fields()

	for name, value := range record {
		fd := fields.ByName(protoreflect.Name(name))
		if fd == nil || value == nil {
			continue
		}

		if fd.IsList() {
			elements, ok := value.([]any)
			if !ok {
				return fmt.Errorf("field [%s]: expected converted array, got %T", name, value)
			}
			list := msg.Mutable(fd).List()
			for _, element := range elements {
				if fd.Kind() == protoreflect.MessageKind {
					sub, ok := element.(types.Record)
					if !ok {
						return fmt.Errorf("field [%s]: expected converted record, got %T", name, element)
					}
					entry := list.NewElement()
					if err := fillMessage(entry.Message(), sub); err != nil {
						return err
					}
					list.Append(entry)
					continue
				}
				leaf, err := leafValue(fd, element)
				if err != nil {
					return fmt.Errorf("field [%s]: %s", name, err)
				}
				list.Append(leaf)
			}
			continue
		}

		if fd.Kind() == protoreflect.MessageKind {
			sub, ok := value.(types.Record)
			if !ok {
				return fmt.Errorf("field [%s]: expected converted record, got %T", name, value)
			}
			entry := msg.NewField(fd)
			if err := fillMessage(entry.Message(), sub); err != nil {
				return err
			}
			msg.Set(fd, entry)
			continue
		}

		leaf, err := leafValue(fd, value)
		if err != nil {
			return fmt.Errorf("field [%s]: %s", name, err)
		}
		msg.Set(fd, leaf)
	}

	return nil
}

func leafValue(fd protoreflect.FieldDescriptor, value any) (protoreflect.Value, error) {
	switch fd.Kind() {
	case protoreflect.StringKind:
		if v, ok := value.(string); ok {
			return protoreflect.ValueOfString(v), nil
		}
	case protoreflect.BytesKind:
		if v, ok := value.([]byte); ok {
			return protoreflect.ValueOfBytes(v), nil
		}
	case protoreflect.Int64Kind:
		if v, ok := value.(int64); ok {
			return protoreflect.ValueOfInt64(v), nil
		}
	case protoreflect.Int32Kind:
		if v, ok := value.(int32); ok {
			return protoreflect.ValueOfInt32(v), nil
		}
	case protoreflect.DoubleKind:
		if v, ok := value.(float64); ok {
			return protoreflect.ValueOfFloat64(v), nil
		}
	case protoreflect.BoolKind:
		if v, ok := value.(bool); ok {
			return protoreflect.ValueOfBool(v), nil
		}
	default:
		return protoreflect.Value{}, fmt.Errorf("unsupported wire kind [%s]", fd.Kind())
	}
	return protoreflect.Value{}, fmt.Errorf("value %v (%T) does not match wire kind [%s]", value, value, fd.Kind())
}
